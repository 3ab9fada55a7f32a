package x12

import (
	"sync"
	"testing"
)

func TestSequenceSourceWidth(t *testing.T) {
	src := NewSequenceSource(1)
	for _, width := range []int{9, 6, 4} {
		got := src.Next(width)
		if len(got) != width {
			t.Errorf("Next(%d) = %q, want %d digits", width, got, width)
		}
	}
}

func TestSequenceSourceIsMonotonic(t *testing.T) {
	src := NewSequenceSource(5)
	if got := src.Next(9); got != "000000005" {
		t.Errorf("first = %q, want 000000005", got)
	}
	if got := src.Next(9); got != "000000006" {
		t.Errorf("second = %q, want 000000006", got)
	}
}

func TestSequenceSourceNeverZero(t *testing.T) {
	src := NewSequenceSource(0)
	if got := src.Next(4); got == "0000" {
		t.Error("control number must not be zero")
	}
}

func TestSequenceSourceWrapsAtFieldWidth(t *testing.T) {
	src := NewSequenceSource(10001)
	if got := src.Next(4); got != "0001" {
		t.Errorf("wrapped = %q, want 0001", got)
	}
}

func TestSequenceSourceConcurrentUse(t *testing.T) {
	src := NewSequenceSource(1)
	const n = 100

	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = src.Next(9)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, r := range results {
		if seen[r] {
			t.Fatalf("duplicate control number %q issued concurrently", r)
		}
		seen[r] = true
	}
}

func TestRandomSourceWidth(t *testing.T) {
	src := NewRandomSource()
	for i := 0; i < 50; i++ {
		got := src.Next(9)
		if len(got) != 9 {
			t.Fatalf("Next(9) = %q, want 9 digits", got)
		}
		if got == "000000000" {
			t.Fatal("control number must not be zero")
		}
	}
}
