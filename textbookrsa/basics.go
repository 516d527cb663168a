package textbookrsa

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/c-w-inf/myrsa/numtheory"
	"github.com/google/uuid"
)

var (
	ErrInvalidKeyLength = errors.New("invalid key length")
	ErrOutOfRange       = errors.New("value out of range")
	ErrInvalidKey       = errors.New("invalid key")
)

var one = big.NewInt(1)

// validationWitnesses bounds the Miller-Rabin rounds Validate spends on each
// factor; generation already ran the full table.
const validationWitnesses = 64

// PublicKey is the public view of a key pair.
type PublicKey struct {
	N, E *big.Int
}

// PrivateKey is the private view of a key pair.
type PrivateKey struct {
	PublicKey
	D, P, Q *big.Int
}

// KeyPair is an RSA key pair. It cannot be modified once built; every
// accessor hands out a copy, so a KeyPair may be shared between goroutines.
type KeyPair struct {
	id      uuid.UUID
	n, e, d *big.Int
	p, q    *big.Int
}

// NewKeyPair assembles a key pair from its components, for instance ones
// read back from storage, after checking they form a valid key.
func NewKeyPair(id uuid.UUID, n, e, d, p, q *big.Int) (*KeyPair, error) {
	k := &KeyPair{
		id: id,
		n:  new(big.Int).Set(n),
		e:  new(big.Int).Set(e),
		d:  new(big.Int).Set(d),
		p:  new(big.Int).Set(p),
		q:  new(big.Int).Set(q),
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *KeyPair) ID() uuid.UUID { return k.id }

// Bits returns the bit length of the modulus.
func (k *KeyPair) Bits() int { return k.n.BitLen() }

func (k *KeyPair) N() *big.Int { return new(big.Int).Set(k.n) }
func (k *KeyPair) E() *big.Int { return new(big.Int).Set(k.e) }
func (k *KeyPair) D() *big.Int { return new(big.Int).Set(k.d) }
func (k *KeyPair) P() *big.Int { return new(big.Int).Set(k.p) }
func (k *KeyPair) Q() *big.Int { return new(big.Int).Set(k.q) }

// Public returns (n, e).
func (k *KeyPair) Public() PublicKey {
	return PublicKey{N: k.N(), E: k.E()}
}

// Private returns (n, e, d, p, q).
func (k *KeyPair) Private() PrivateKey {
	return PrivateKey{PublicKey: k.Public(), D: k.D(), P: k.P(), Q: k.Q()}
}

// Validate checks n = p*q with p != q both prime, 1 < e < phi with
// gcd(e, phi) = 1, and d = e^-1 mod phi with 0 <= d < phi.
func (k *KeyPair) Validate() error {
	if k.p.Cmp(k.q) == 0 {
		return fmt.Errorf("%w: p == q", ErrInvalidKey)
	}
	tester := numtheory.NewTester(nil, validationWitnesses)
	if !tester.IsProbablePrime(k.p) || !tester.IsProbablePrime(k.q) {
		return fmt.Errorf("%w: factor is not prime", ErrInvalidKey)
	}
	if new(big.Int).Mul(k.p, k.q).Cmp(k.n) != 0 {
		return fmt.Errorf("%w: n != p*q", ErrInvalidKey)
	}
	phi := totient(k.p, k.q)
	if k.e.Cmp(one) <= 0 || k.e.Cmp(phi) >= 0 {
		return fmt.Errorf("%w: e outside (1, phi)", ErrInvalidKey)
	}
	if numtheory.GCD(k.e, phi).Cmp(one) != 0 {
		return fmt.Errorf("%w: gcd(e, phi) != 1", ErrInvalidKey)
	}
	if k.d.Sign() < 0 || k.d.Cmp(phi) >= 0 {
		return fmt.Errorf("%w: d outside [0, phi)", ErrInvalidKey)
	}
	ed := new(big.Int).Mul(k.e, k.d)
	if ed.Mod(ed, phi).Cmp(one) != 0 {
		return fmt.Errorf("%w: e*d != 1 mod phi", ErrInvalidKey)
	}
	return nil
}

// totient returns (p-1)(q-1).
func totient(p, q *big.Int) *big.Int {
	p1 := new(big.Int).Sub(p, one)
	q1 := new(big.Int).Sub(q, one)
	return p1.Mul(p1, q1)
}
