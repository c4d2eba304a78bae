package contract

// Groups partitions an ABI's functions by mutability. Each group keeps the
// order the functions appear in the ABI.
type Groups struct {
	Payable    []*Function
	NonPayable []*Function
	ReadOnly   []*Function // view and pure
}

// Classify splits entries into payable, non-payable and read-only functions.
// Non-function entries are dropped, and any mutability that is neither
// payable nor view/pure lands in NonPayable.
func Classify(entries []Entry) Groups {
	var g Groups
	for _, e := range entries {
		fn, ok := e.(*Function)
		if !ok {
			continue
		}
		switch {
		case fn.IsPayable():
			g.Payable = append(g.Payable, fn)
		case fn.IsReadOnly():
			g.ReadOnly = append(g.ReadOnly, fn)
		default:
			g.NonPayable = append(g.NonPayable, fn)
		}
	}
	return g
}

// Len returns the number of classified functions.
func (g Groups) Len() int { return len(g.Payable) + len(g.NonPayable) + len(g.ReadOnly) }
