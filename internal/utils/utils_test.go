package utils

import (
	"math/rand"
	"testing"
)

func TestAbs(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  int
	}{
		{"positive number", 5, 5},
		{"negative number", -3, 3},
		{"zero", 0, 0},
		{"max positive", 1<<31 - 1, 1<<31 - 1},
		{"min negative", -1 << 31, 1 << 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Abs(tt.input); got != tt.want {
				t.Errorf("Abs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectRandomItems_ReturnsRequestedCount(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	got := SelectRandomItems(rand.New(rand.NewSource(1)), items, 3)
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	seen := map[int]bool{}
	for _, v := range got {
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct items, got %v", got)
	}
}

func TestSelectRandomItems_IsDeterministicForAFixedSeed(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	a := SelectRandomItems(rand.New(rand.NewSource(42)), items, 4)
	b := SelectRandomItems(rand.New(rand.NewSource(42)), items, 4)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("selections differ at index %d across runs with the same seed: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestSelectRandomItems_CountExceedingLengthReturnsAll(t *testing.T) {
	items := []int{1, 2, 3}
	got := SelectRandomItems(rand.New(rand.NewSource(1)), items, 10)
	if len(got) != len(items) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(items))
	}
}
