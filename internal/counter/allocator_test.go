package counter

import (
	"strings"
	"testing"
)

func TestBlockFormatsSequentialIDs(t *testing.T) {
	block := NewBlock("lead", "M", 101, 3)

	want := []string{"leadM101", "leadM102", "leadM103"}
	for i, expected := range want {
		if got := block.ID(i); got != expected {
			t.Fatalf("ID(%d) = %q, want %q", i, got, expected)
		}
	}
}

func TestBlockIDsArePairwiseDistinct(t *testing.T) {
	block := NewBlock("agent", "A", 1, 50)

	seen := make(map[string]bool, block.Size())
	for i := 0; i < block.Size(); i++ {
		id := block.ID(i)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestReserveQueryIsSingleAtomicUpdate(t *testing.T) {
	// The whole point of the allocator is that the advance happens in one
	// statement. Guard against someone reintroducing a read-then-write.
	if !strings.Contains(reserveQuery, "count = count + $2") {
		t.Fatal("reserve query must advance the counter in place")
	}
	if !strings.Contains(reserveQuery, "RETURNING") {
		t.Fatal("reserve query must return the advanced counter in the same statement")
	}
	if strings.Count(strings.ToUpper(reserveQuery), "SELECT") > 0 {
		t.Fatal("reserve query must not read before writing")
	}
}
