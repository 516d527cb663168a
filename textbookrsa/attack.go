package textbookrsa

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/c-w-inf/myrsa/numtheory"
)

var ErrExponentsNotCoprime = errors.New("public exponents are not coprime")

// RecoverCommonModulus recovers m from c1 = m^e1 mod n and c2 = m^e2 mod n,
// two encryptions of the same message under one modulus. With
// s*e1 + t*e2 = 1, m = c1^s * c2^t mod n; a negative coefficient is applied
// to the inverse of its ciphertext.
func RecoverCommonModulus(n, e1, e2, c1, c2 *big.Int) (*big.Int, error) {
	g, s, t := numtheory.ExtendedGCD(e1, e2)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: gcd(e1, e2) = %v", ErrExponentsNotCoprime, g)
	}
	part1, err := signedModPow(c1, s, n)
	if err != nil {
		return nil, err
	}
	part2, err := signedModPow(c2, t, n)
	if err != nil {
		return nil, err
	}
	m := part1.Mul(part1, part2)
	return m.Mod(m, n), nil
}

// signedModPow returns c^k mod n, inverting c first when k < 0.
func signedModPow(c, k, n *big.Int) (*big.Int, error) {
	if k.Sign() >= 0 {
		return numtheory.ModPow(c, k, n)
	}
	inv, err := numtheory.ModInverse(c, n)
	if err != nil {
		return nil, fmt.Errorf("inverting ciphertext: %w", err)
	}
	return numtheory.ModPow(inv, new(big.Int).Neg(k), n)
}
