package app

import (
	"sync"
	"testing"
)

func TestBudgetCapsOperations(t *testing.T) {
	b := NewBudget()
	if !b.Allow(opExtract) || !b.Allow(opExtract) {
		t.Fatal("first two extractions must be allowed")
	}
	if b.Allow(opExtract) {
		t.Fatal("third extraction must be denied")
	}
	if b.Used(opExtract) != 2 {
		t.Fatalf("used = %d", b.Used(opExtract))
	}
}

func TestBudgetUnknownOperationUnlimited(t *testing.T) {
	b := NewBudget()
	for i := 0; i < 10; i++ {
		if !b.Allow("ping") {
			t.Fatal("unlimited operation denied")
		}
	}
}

func TestBudgetIsPerInstance(t *testing.T) {
	first := NewBudget()
	first.Allow(opExtract)
	first.Allow(opExtract)

	second := NewBudget()
	if !second.Allow(opExtract) {
		t.Fatal("a fresh budget must not inherit another request's spend")
	}
}

func TestBudgetConcurrentUse(t *testing.T) {
	b := NewBudget()
	var wg sync.WaitGroup
	granted := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted <- b.Allow(opLLM)
		}()
	}
	wg.Wait()
	close(granted)
	allowed := 0
	for g := range granted {
		if g {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("allowed = %d, want exactly the configured limit", allowed)
	}
}
