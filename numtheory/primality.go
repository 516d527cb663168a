package numtheory

import (
	"math/big"
)

// Tester rejects composites by trial division against a PrimeTable followed
// by Miller-Rabin rounds, using the table's primes as witnesses.
type Tester struct {
	table     *PrimeTable
	witnesses []*big.Int
}

// NewTester returns a Tester over table. With witnesses == 0 every prime in
// the table is used as a Miller-Rabin base; otherwise only the first
// witnesses primes are.
func NewTester(table *PrimeTable, witnesses int) *Tester {
	if table == nil {
		table = SmallPrimes()
	}
	w := table.big
	if witnesses > 0 && witnesses < len(w) {
		w = w[:witnesses]
	}
	return &Tester{table: table, witnesses: w}
}

// Table returns the prime table the tester divides by.
func (t *Tester) Table() *PrimeTable {
	return t.table
}

// IsProbablePrime tests n with the small prime table and the full witness set.
func IsProbablePrime(n *big.Int) bool {
	return NewTester(SmallPrimes(), 0).IsProbablePrime(n)
}

// IsProbablePrime reports whether n survives trial division and every
// Miller-Rabin round. A true result is probabilistic above the table limit.
func (t *Tester) IsProbablePrime(n *big.Int) bool {
	if n.Cmp(two) < 0 {
		return false
	}
	if t.table.Contains(n) {
		return true
	}
	rem := new(big.Int)
	for _, p := range t.table.big {
		if rem.Rem(n, p).Sign() == 0 {
			return false
		}
	}

	// n - 1 = 2^r * d, d odd
	nm1 := new(big.Int).Sub(n, one)
	r := int(nm1.TrailingZeroBits())
	d := new(big.Int).Rsh(nm1, uint(r))

	for _, a := range t.witnesses {
		if !MillerRabinRound(n, d, r, a) {
			return false
		}
	}
	return true
}

// MillerRabinRound runs one Miller-Rabin round with base a on odd n, where
// n - 1 = 2^r * d. It returns false if a proves n composite.
func MillerRabinRound(n, d *big.Int, r int, a *big.Int) bool {
	nm1 := new(big.Int).Sub(n, one)
	x := binaryExp(a, d, n)
	if x.Cmp(one) == 0 || x.Cmp(nm1) == 0 {
		return true
	}
	for i := 1; i < r; i++ {
		x.Mul(x, x)
		x.Mod(x, n)
		if x.Cmp(nm1) == 0 {
			return true
		}
	}
	return false
}
