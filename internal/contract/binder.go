package contract

import "sync"

type slot struct {
	fn    string
	param string
}

// Bindings holds the raw user input for every (function, parameter) pair,
// plus one amount slot per function. Values are stored exactly as typed and
// only validated when a call is encoded. The amount lives in its own map so a
// parameter literally named "amount" cannot collide with it.
type Bindings struct {
	mu      sync.RWMutex
	values  map[slot]string
	amounts map[string]string
}

// NewBindings returns an empty binding set.
func NewBindings() *Bindings {
	return &Bindings{
		values:  make(map[slot]string),
		amounts: make(map[string]string),
	}
}

// Set binds raw to a parameter. Last write wins.
func (b *Bindings) Set(fnKey, param, raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[slot{fnKey, param}] = raw
}

// Get returns the bound value and whether one was ever set.
func (b *Bindings) Get(fnKey, param string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[slot{fnKey, param}]
	return v, ok
}

// SetAmount binds the native-currency amount, in ETH, for a payable function.
func (b *Bindings) SetAmount(fnKey, raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.amounts[fnKey] = raw
}

// Amount returns the bound amount, or "" if none was set.
func (b *Bindings) Amount(fnKey string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.amounts[fnKey]
}

// Args snapshots fn's arguments in declaration order. Unset slots are "".
func (b *Bindings) Args(fn *Function) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	args := make([]string, len(fn.Inputs))
	for i, p := range fn.Inputs {
		args[i] = b.values[slot{fn.Key(), ParamKey(i, p)}]
	}
	return args
}

// Clear drops every value bound for fnKey.
func (b *Bindings) Clear(fnKey string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.values {
		if s.fn == fnKey {
			delete(b.values, s)
		}
	}
	delete(b.amounts, fnKey)
}
