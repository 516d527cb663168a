package numtheory

import (
	"math/big"
	"sort"
	"sync"
)

// SieveLimit is the bound of the process-wide small prime table.
const SieveLimit = 20000

// PrimeTable holds every prime up to some limit, in increasing order, and
// their product. It is read-only once built.
type PrimeTable struct {
	Primes  []int
	Product *big.Int

	limit int
	big   []*big.Int // Primes as big integers, for trial division
}

var (
	smallPrimesOnce sync.Once
	smallPrimes     *PrimeTable
)

// SmallPrimes returns the table of primes up to SieveLimit. It is built on
// first use and shared afterwards.
func SmallPrimes() *PrimeTable {
	smallPrimesOnce.Do(func() {
		smallPrimes = NewPrimeTable(SieveLimit)
	})
	return smallPrimes
}

// NewPrimeTable sieves the primes up to limit and multiplies them together.
func NewPrimeTable(limit int) *PrimeTable {
	primes := EulerSieve(limit)
	t := &PrimeTable{
		Primes:  primes,
		Product: Product(primes),
		limit:   limit,
		big:     make([]*big.Int, len(primes)),
	}
	for i, p := range primes {
		t.big[i] = big.NewInt(int64(p))
	}
	return t
}

// Limit returns the bound the table was sieved up to.
func (t *PrimeTable) Limit() int {
	return t.limit
}

// Contains reports whether n is one of the primes in the table.
func (t *PrimeTable) Contains(n *big.Int) bool {
	if n.Sign() <= 0 || n.Cmp(big.NewInt(int64(t.limit))) > 0 {
		return false
	}
	v := int(n.Int64())
	i := sort.SearchInts(t.Primes, v)
	return i < len(t.Primes) && t.Primes[i] == v
}

// EulerSieve returns the primes <= limit using a linear sieve: every
// composite is crossed out exactly once, by its smallest prime factor.
func EulerSieve(limit int) []int {
	if limit < 2 {
		return []int{}
	}
	composite := make([]bool, limit+1)
	primes := make([]int, 0)
	for i := 2; i <= limit; i++ {
		if !composite[i] {
			primes = append(primes, i)
		}
		for _, p := range primes {
			if i*p > limit {
				break
			}
			composite[i*p] = true
			if i%p == 0 {
				break
			}
		}
	}
	return primes
}

// Product multiplies primes together. The empty product is 1.
func Product(primes []int) *big.Int {
	prod := big.NewInt(1)
	f := new(big.Int)
	for _, p := range primes {
		prod.Mul(prod, f.SetInt64(int64(p)))
	}
	return prod
}
