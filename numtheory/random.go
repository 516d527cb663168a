package numtheory

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	mrand "math/rand"
	"sync"
)

var (
	ErrEmptyRange        = errors.New("empty range")
	ErrGenerationTimeout = errors.New("gave up searching for a prime")
)

// rangeSlack is how many bits wider than the range width a sample is drawn
// before reducing it, which keeps the modulo bias under 2^-rangeSlack.
const rangeSlack = 64

// Source produces uniformly random big integers. It owns its state and is
// safe for concurrent use, although concurrent callers interleave draws from
// the same stream.
type Source struct {
	mu          sync.Mutex
	random      io.Reader
	maxAttempts int
}

// NewSource returns a Source reading entropy from random. A nil reader
// means crypto/rand.
func NewSource(random io.Reader) *Source {
	if random == nil {
		random = rand.Reader
	}
	return &Source{random: random}
}

// NewSeededSource returns a Source with a deterministic stream.
func NewSeededSource(seed int64) *Source {
	s := &Source{}
	s.SetSeed(seed)
	return s
}

// SetSeed replaces the stream with a deterministic one started from seed.
func (s *Source) SetSeed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.random = mrand.New(mrand.NewSource(seed))
}

// SetMaxAttempts caps the number of candidates RandomPrimeInRange draws.
// Zero means no cap.
func (s *Source) SetMaxAttempts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxAttempts = n
}

// RandomBits returns a uniform value in [0, 2^n).
func (s *Source) RandomBits(n int) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.randomBits(n)
}

func (s *Source) randomBits(n int) (*big.Int, error) {
	if n <= 0 {
		return new(big.Int), nil
	}
	buf := make([]byte, (n+7)/8)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return nil, err
	}
	// clear the excess high bits of the leading byte
	if extra := uint(len(buf)*8 - n); extra > 0 {
		buf[0] &= byte(0xff >> extra)
	}
	return new(big.Int).SetBytes(buf), nil
}

// RandomInRange returns a value in [lo, hi], inclusive.
func (s *Source) RandomInRange(lo, hi *big.Int) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.randomInRange(lo, hi)
}

func (s *Source) randomInRange(lo, hi *big.Int) (*big.Int, error) {
	if lo.Cmp(hi) > 0 {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrEmptyRange, lo, hi)
	}
	width := new(big.Int).Sub(hi, lo)
	width.Add(width, one)
	x, err := s.randomBits(width.BitLen() + rangeSlack)
	if err != nil {
		return nil, err
	}
	x.Mod(x, width)
	return x.Add(x, lo), nil
}

// RandomPrimeInRange draws candidates from [lo, hi] until one passes
// tester. Candidates above the table limit that share a factor with the
// table product are discarded before the full test runs.
//
// Without a cap set by SetMaxAttempts the search only stops on success or
// when ctx is done; a range holding no prime never terminates on its own.
func (s *Source) RandomPrimeInRange(ctx context.Context, lo, hi *big.Int, tester *Tester) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tester == nil {
		tester = NewTester(SmallPrimes(), 0)
	}
	table := tester.Table()
	limit := big.NewInt(int64(table.Limit()))

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.maxAttempts > 0 && attempt > s.maxAttempts {
			return nil, fmt.Errorf("%w: %d candidates in [%v, %v]", ErrGenerationTimeout, s.maxAttempts, lo, hi)
		}
		x, err := s.randomInRange(lo, hi)
		if err != nil {
			return nil, err
		}
		if x.Cmp(limit) <= 0 {
			if table.Contains(x) {
				return x, nil
			}
			continue
		}
		if GCD(x, table.Product).Cmp(one) != 0 {
			continue
		}
		if tester.IsProbablePrime(x) {
			return x, nil
		}
	}
}
