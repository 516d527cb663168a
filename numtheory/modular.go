package numtheory

import (
	"errors"
	"math/big"
)

var (
	ErrNegativeExponent = errors.New("negative exponent")
	ErrInvalidModulus   = errors.New("invalid modulus")
	ErrNoInverse        = errors.New("no modular inverse exists")
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
)

// ModPow returns base^exponent mod modulus, in [0, |modulus|).
// The running power and the result are reduced after every multiplication.
func ModPow(base, exponent, modulus *big.Int) (*big.Int, error) {
	if exponent.Sign() < 0 {
		return nil, ErrNegativeExponent
	}
	if modulus.Sign() == 0 {
		return nil, ErrInvalidModulus
	}
	return binaryExp(base, exponent, modulus), nil
}

// Pow returns base^exponent with no reduction. Only meant for small values.
func Pow(base, exponent *big.Int) (*big.Int, error) {
	if exponent.Sign() < 0 {
		return nil, ErrNegativeExponent
	}
	return binaryExp(base, exponent, nil), nil
}

// binaryExp is square-and-multiply over the bits of k, least significant
// first. A nil m means no reduction. k must be non-negative.
func binaryExp(a, k, m *big.Int) *big.Int {
	res := big.NewInt(1)
	w := new(big.Int).Set(a)
	if m != nil {
		res.Mod(res, m)
		w.Mod(w, m)
	}
	for i, n := 0, k.BitLen(); i < n; i++ {
		if k.Bit(i) == 1 {
			res.Mul(res, w)
			if m != nil {
				res.Mod(res, m)
			}
		}
		if i+1 < n {
			w.Mul(w, w)
			if m != nil {
				w.Mod(w, m)
			}
		}
	}
	return res
}

// GCD returns the greatest common divisor of a and b, computed by repeated
// gcd(a, b) = gcd(b, a mod b) until b is zero. The result is non-negative.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	for y.Sign() != 0 {
		x.Rem(x, y)
		x, y = y, x
	}
	return x
}

// ExtendedGCD returns g = gcd(a, b) together with Bézout coefficients x, y
// such that a*x + b*y = g.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)
	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, oldR.Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, oldS.Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, oldT.Sub(oldT, tmp)
	}
	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// ModInverse returns x in [0, m) with a*x = 1 (mod m).
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	g, x, _ := ExtendedGCD(a, m)
	if g.Cmp(one) != 0 {
		return nil, ErrNoInverse
	}
	return x.Mod(x, m), nil
}
