package domain_test

import (
	"testing"

	"github.com/msomdec/code-journal/internal/domain"
)

func TestPrependBounded_NewestFirst(t *testing.T) {
	var list []int
	for i := 1; i <= 3; i++ {
		list = domain.PrependBounded(list, i, 10)
	}

	want := []int{3, 2, 1}
	if len(list) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(list))
	}
	for i := range want {
		if list[i] != want[i] {
			t.Fatalf("position %d: expected %d, got %d", i, want[i], list[i])
		}
	}
}

func TestPrependBounded_EvictsOldest(t *testing.T) {
	const maxLen = 5
	var list []int
	for i := 1; i <= maxLen+3; i++ {
		list = domain.PrependBounded(list, i, maxLen)
	}

	if len(list) != maxLen {
		t.Fatalf("expected %d entries after overflow, got %d", maxLen, len(list))
	}
	// Head is the newest entry, tail the oldest survivor.
	if list[0] != maxLen+3 {
		t.Fatalf("expected head %d, got %d", maxLen+3, list[0])
	}
	if list[maxLen-1] != 4 {
		t.Fatalf("expected tail 4, got %d", list[maxLen-1])
	}
}

func TestPrependBounded_AtCapacityStaysBounded(t *testing.T) {
	list := []string{"c", "b", "a"}
	list = domain.PrependBounded(list, "d", 3)

	if len(list) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(list))
	}
	if list[0] != "d" || list[2] != "b" {
		t.Fatalf("unexpected contents: %v", list)
	}
}
