package x12

import (
	"math/rand"
	"sync"
	"time"
)

// Control number field widths for the three envelope pairs.
const (
	interchangeControlWidth = 9 // ISA13 / IEA02
	groupControlWidth       = 6 // GS06 / GE02
	transactionControlWidth = 4 // ST02 / SE02
)

// ControlNumberSource supplies envelope control numbers. Implementations
// must be safe for concurrent use: one source may be shared across
// simultaneous generation calls.
type ControlNumberSource interface {
	// Next returns a numeric control number rendered to exactly width digits.
	Next(width int) string
}

// SequenceSource issues monotonically increasing control numbers. Numbers
// are unique within a process until the field width wraps, which keeps
// generated documents reproducible under test and collision-free in
// practice.
type SequenceSource struct {
	mu   sync.Mutex
	next uint64
}

// NewSequenceSource returns a SequenceSource whose first number is seed.
func NewSequenceSource(seed uint64) *SequenceSource {
	return &SequenceSource{next: seed}
}

func (s *SequenceSource) Next(width int) string {
	s.mu.Lock()
	n := s.next
	s.next++
	s.mu.Unlock()

	limit := pow10(width)
	n = n % limit
	if n == 0 {
		n = 1
	}
	return ZeroPad(int(n), width)
}

// RandomSource draws control numbers from a random source sized to the
// field width. Kept for callers that do not care about reproducibility.
type RandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a RandomSource seeded from the clock.
func NewRandomSource() *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *RandomSource) Next(width int) string {
	r.mu.Lock()
	n := r.rng.Int63n(int64(pow10(width)) - 1)
	r.mu.Unlock()
	return ZeroPad(int(n+1), width)
}

// defaultSource is the process-wide sequence used when a Generator has no
// explicit source. Seeded from the clock so restarts do not reuse the same
// numbers immediately.
var defaultSource ControlNumberSource = NewSequenceSource(uint64(time.Now().Unix() % 1_000_000))

func pow10(width int) uint64 {
	n := uint64(1)
	for i := 0; i < width; i++ {
		n *= 10
	}
	return n
}
