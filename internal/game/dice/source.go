package dice

import (
	"crypto/rand"
	"encoding/binary"
	randv2 "math/rand/v2"
	"sync"
)

// Source is the randomness provider for weighted rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Float64 builds a value from the top 53 bits of 8 random bytes.
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// seededSource is a reproducible PCG-backed Source.
type seededSource struct {
	mu sync.Mutex
	r  *randv2.Rand
}

// NewSeededSource returns a deterministic Source: two sources built from the
// same seed produce the same sequence.
func NewSeededSource(seed int64) Source {
	return &seededSource{r: newPCG(seed)}
}

func newPCG(seed int64) *randv2.Rand {
	return randv2.New(randv2.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

// Float64 returns the next value of the sequence.
func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *seededSource) reseed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r = newPCG(seed)
}

// defaultSource is the process-wide Source used by dice built without
// WithSource. It starts from a crypto-random seed.
var defaultSource = func() *seededSource {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return &seededSource{r: newPCG(int64(binary.LittleEndian.Uint64(buf[:])))}
}()

// DefaultSource returns the process-wide Source.
func DefaultSource() Source {
	return defaultSource
}

// Seed resets the process-wide Source to the deterministic sequence for seed.
// Dice built without WithSource observe the new sequence on their next roll.
func Seed(seed int64) {
	defaultSource.reseed(seed)
}
