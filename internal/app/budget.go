package app

import (
	"sync"
)

// Budget caps what one question may spend: web extractions and
// document searches are the expensive steps, so each request carries
// its own counters instead of sharing process-wide state. A Budget is
// created per Ask call and discarded with it.
type Budget struct {
	mu    sync.Mutex
	used  map[string]int
	limit map[string]int
}

const (
	opExtract   = "extract"
	opDocSearch = "docsearch"
	opLLM       = "llm"
)

// NewBudget returns the per-question budget. The extraction cap of two
// covers the main-page pass plus one deep crawl; one extra model call
// is reserved for a reformulation if the first answer comes back empty.
func NewBudget() *Budget {
	return &Budget{
		used: make(map[string]int),
		limit: map[string]int{
			opExtract:   2,
			opDocSearch: 2,
			opLLM:       2,
		},
	}
}

// Allow records one use of the named operation and reports whether it
// was still within budget.
func (b *Budget) Allow(op string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	max, ok := b.limit[op]
	if !ok {
		return true
	}
	if b.used[op] >= max {
		return false
	}
	b.used[op]++
	return true
}

// Used reports how many times the named operation ran.
func (b *Budget) Used(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used[op]
}
