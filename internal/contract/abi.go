package contract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// Mutability is a function's declared stateMutability.
type Mutability string

// Mutability values.
const (
	Payable    Mutability = "payable"
	NonPayable Mutability = "nonpayable"
	View       Mutability = "view"
	Pure       Mutability = "pure"
)

// Parameter is a function input or output.
type Parameter struct {
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	InternalType string      `json:"internalType,omitempty"`
	Components   []Parameter `json:"components,omitempty"`
}

// Entry is one element of an ABI: either a *Function or an *OtherEntry.
type Entry interface {
	EntryKind() string
	isEntry()
}

// Function is a callable ABI entry.
type Function struct {
	Name       string
	Inputs     []Parameter
	Outputs    []Parameter
	Mutability Mutability

	key string
}

// OtherEntry is any non-function ABI entry (constructor, event, error,
// fallback, receive). It is never callable.
type OtherEntry struct {
	Kind string
	Name string
}

func (*Function) EntryKind() string     { return "function" }
func (e *OtherEntry) EntryKind() string { return e.Kind }
func (*Function) isEntry()              {}
func (*OtherEntry) isEntry()            {}

// IsPayable reports whether the function accepts a native-currency value.
func (f *Function) IsPayable() bool { return f.Mutability == Payable }

// IsReadOnly reports whether the function is view or pure.
func (f *Function) IsReadOnly() bool { return f.Mutability == View || f.Mutability == Pure }

// Key identifies the function within its ABI: the bare name when the name is
// unique, the canonical signature when it is overloaded.
func (f *Function) Key() string {
	if f.key != "" {
		return f.key
	}
	return f.Name
}

// Signature returns the canonical signature, e.g. "transfer(address,uint256)".
func (f *Function) Signature() string {
	types := make([]string, len(f.Inputs))
	for i, p := range f.Inputs {
		types[i] = p.canonicalType()
	}
	return f.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector.
func (f *Function) Selector() []byte {
	return crypto.Keccak256([]byte(f.Signature()))[:4]
}

// InputArguments converts the declared inputs to go-ethereum arguments.
func (f *Function) InputArguments() (abi.Arguments, error) { return arguments(f.Inputs) }

// OutputArguments converts the declared outputs to go-ethereum arguments.
func (f *Function) OutputArguments() (abi.Arguments, error) { return arguments(f.Outputs) }

// OutputTypes lists the canonical output types, for display.
func (f *Function) OutputTypes() []string {
	out := make([]string, len(f.Outputs))
	for i, p := range f.Outputs {
		out[i] = p.canonicalType()
	}
	return out
}

// ABIType parses the parameter's type string.
func (p Parameter) ABIType() (abi.Type, error) {
	return abi.NewType(expandAlias(p.Type), p.InternalType, components(p.Components))
}

// intAlias matches the bare uint/int shorthand, optionally as an array.
var intAlias = regexp.MustCompile(`^(u?int)(\[|$)`)

// expandAlias rewrites uint and int to their 256-bit canonical form, which
// go-ethereum refuses to infer.
func expandAlias(t string) string {
	return intAlias.ReplaceAllString(t, "${1}256$2")
}

// canonicalType expands aliases (uint -> uint256) and tuples to their
// component list. Unparseable types are returned as written.
func (p Parameter) canonicalType() string {
	t, err := p.ABIType()
	if err != nil {
		return p.Type
	}
	return t.String()
}

func components(params []Parameter) []abi.ArgumentMarshaling {
	if len(params) == 0 {
		return nil
	}
	out := make([]abi.ArgumentMarshaling, len(params))
	for i, p := range params {
		out[i] = abi.ArgumentMarshaling{
			Name:         p.Name,
			Type:         expandAlias(p.Type),
			InternalType: p.InternalType,
			Components:   components(p.Components),
		}
	}
	return out
}

func arguments(params []Parameter) (abi.Arguments, error) {
	args := make(abi.Arguments, len(params))
	for i, p := range params {
		t, err := p.ABIType()
		if err != nil {
			return nil, &Error{Kind: KindEncoding, Param: ParamKey(i, p), Msg: fmt.Sprintf("unsupported type %q", p.Type), Err: err}
		}
		args[i] = abi.Argument{Name: p.Name, Type: t}
	}
	return args, nil
}

// ParamKey is the binding key of the i-th parameter: its name, or "arg<i>"
// when the ABI leaves it unnamed.
func ParamKey(i int, p Parameter) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("arg%d", i)
}

// ABI is a parsed contract interface.
type ABI struct {
	Entries []Entry

	functions []*Function
	bySig     map[string]*Function
	byName    map[string][]*Function
}

// rawEntry mirrors the JSON ABI, including the pre-0.4.16 constant/payable flags.
type rawEntry struct {
	Type            string      `json:"type"`
	Name            string      `json:"name"`
	Inputs          []Parameter `json:"inputs"`
	Outputs         []Parameter `json:"outputs"`
	StateMutability string      `json:"stateMutability"`
	Constant        *bool       `json:"constant,omitempty"`
	Payable         *bool       `json:"payable,omitempty"`
}

// ParseABI parses ABI JSON text. Anything that is not a JSON array of objects
// fails with a ParseError wrapping ErrInvalidABI; nothing is partially parsed.
func ParseABI(data []byte) (*ABI, error) {
	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Kind: KindParse, Err: fmt.Errorf("%w: %v", ErrInvalidABI, err)}
	}
	if raw == nil {
		return nil, &Error{Kind: KindParse, Err: fmt.Errorf("%w: expected a JSON array", ErrInvalidABI)}
	}

	a := &ABI{
		Entries: make([]Entry, 0, len(raw)),
		bySig:   make(map[string]*Function),
		byName:  make(map[string][]*Function),
	}
	for _, r := range raw {
		if r.Type != "function" {
			a.Entries = append(a.Entries, &OtherEntry{Kind: r.Type, Name: r.Name})
			continue
		}
		fn := &Function{
			Name:       r.Name,
			Inputs:     r.Inputs,
			Outputs:    r.Outputs,
			Mutability: r.mutability(),
		}
		a.Entries = append(a.Entries, fn)
		a.functions = append(a.functions, fn)
		a.byName[fn.Name] = append(a.byName[fn.Name], fn)
		if _, dup := a.bySig[fn.Signature()]; !dup {
			a.bySig[fn.Signature()] = fn
		}
	}

	for _, fn := range a.functions {
		if len(a.byName[fn.Name]) > 1 {
			fn.key = fn.Signature()
		} else {
			fn.key = fn.Name
		}
	}
	return a, nil
}

func (r rawEntry) mutability() Mutability {
	if r.StateMutability != "" {
		return Mutability(r.StateMutability)
	}
	switch {
	case r.Payable != nil && *r.Payable:
		return Payable
	case r.Constant != nil && *r.Constant:
		return View
	default:
		return NonPayable
	}
}

// Functions returns the function entries in ABI order.
func (a *ABI) Functions() []*Function { return a.functions }

// Lookup finds a function by key: a canonical signature, or a bare name when
// that name is not overloaded.
func (a *ABI) Lookup(key string) (*Function, error) {
	if fn, ok := a.bySig[key]; ok {
		return fn, nil
	}
	if fn, ok := a.bySig[canonicalKey(key)]; ok {
		return fn, nil
	}
	switch fns := a.byName[key]; len(fns) {
	case 0:
		return nil, &Error{Kind: KindValidation, Msg: fmt.Sprintf("%q", key), Err: ErrUnknownFunction}
	case 1:
		return fns[0], nil
	default:
		sigs := make([]string, len(fns))
		for i, fn := range fns {
			sigs[i] = fn.Signature()
		}
		return nil, &Error{
			Kind: KindValidation,
			Msg:  fmt.Sprintf("%q matches %s", key, strings.Join(sigs, ", ")),
			Err:  ErrAmbiguousFunction,
		}
	}
}

// canonicalKey rewrites a signature-shaped key to canonical form: spaces
// dropped and uint/int aliases expanded. Other keys are returned unchanged.
func canonicalKey(key string) string {
	open := strings.IndexByte(key, '(')
	if open < 0 || !strings.HasSuffix(key, ")") {
		return key
	}
	name := strings.TrimSpace(key[:open])
	params := strings.TrimSpace(key[open+1 : len(key)-1])
	if params == "" {
		return name + "()"
	}
	parts := strings.Split(params, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		core := strings.TrimLeft(p, "(")
		lead := p[:len(p)-len(core)]
		typ := strings.TrimRight(core, ")")
		parts[i] = lead + expandAlias(typ) + core[len(typ):]
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}
