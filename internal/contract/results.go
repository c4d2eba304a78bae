package contract

import (
	"sync"

	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

// Status is the outcome of one invocation.
type Status string

// Statuses.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is what one invocation produced for a function slot.
type Result struct {
	Function   string // function key
	Status     Status
	Rendered   string // always set; "Error: <message>" on failure
	Decoded    *Decoded
	Receipt    *wallet.Receipt
	Err        error
	Generation uint64
}

func errorResult(key string, err error) Result {
	return Result{Function: key, Status: StatusError, Rendered: "Error: " + err.Error(), Err: err}
}

// ResultBook keeps the latest result per function key for the session.
//
// By default a completed result always replaces the previous one, so when
// two calls to the same function overlap, whichever finishes last wins. With
// strict ordering, Begin issues a generation per call and Complete discards
// results from any generation older than the latest issued.
type ResultBook struct {
	mu      sync.Mutex
	strict  bool
	issued  map[string]uint64
	results map[string]Result
}

// NewResultBook creates an empty book.
func NewResultBook(strict bool) *ResultBook {
	return &ResultBook{
		strict:  strict,
		issued:  make(map[string]uint64),
		results: make(map[string]Result),
	}
}

// Strict reports whether generation ordering is enforced.
func (b *ResultBook) Strict() bool { return b.strict }

// Begin issues the next generation for key.
func (b *ResultBook) Begin(key string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issued[key]++
	return b.issued[key]
}

// Complete records r and reports whether it was applied. In strict mode a
// result whose generation is not the latest issued for its key is dropped.
func (b *ResultBook) Complete(r Result) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.strict && r.Generation != b.issued[r.Function] {
		return false
	}
	b.results[r.Function] = r
	return true
}

// Set records r unconditionally.
func (b *ResultBook) Set(r Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[r.Function] = r
}

// Get returns the latest result for key.
func (b *ResultBook) Get(key string) (Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.results[key]
	return r, ok
}

// Len returns how many slots hold a result.
func (b *ResultBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.results)
}
