package textbookrsa

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/c-w-inf/myrsa/numtheory"
	"github.com/google/uuid"
)

const (
	MinKeyBits     = 8
	MaxKeyBits     = 8192
	DefaultKeyBits = 512

	DefaultPublicExponent = 65537
)

// Config tunes a Generator. The zero value is the reference behaviour:
// crypto/rand entropy, every small prime as a Miller-Rabin witness, no cap
// on prime search attempts and e = 65537.
type Config struct {
	// Seed, if set, makes generation deterministic.
	Seed *int64
	// Witnesses limits the Miller-Rabin bases to the first Witnesses small
	// primes. Zero uses all of them.
	Witnesses int
	// MaxAttempts caps the candidates drawn per prime. Zero means no cap.
	MaxAttempts int
	// PublicExponent is the preferred e, reduced mod phi. Zero means 65537.
	PublicExponent int64
}

// Generator produces key pairs. It owns its randomness source and primality
// tester; concurrent Generate calls are serialized.
type Generator struct {
	mu     sync.Mutex
	rand   *numtheory.Source
	tester *numtheory.Tester
	e      *big.Int
}

func NewGenerator(cfg Config) *Generator {
	var src *numtheory.Source
	if cfg.Seed != nil {
		src = numtheory.NewSeededSource(*cfg.Seed)
	} else {
		src = numtheory.NewSource(nil)
	}
	src.SetMaxAttempts(cfg.MaxAttempts)
	e := cfg.PublicExponent
	if e == 0 {
		e = DefaultPublicExponent
	}
	return &Generator{
		rand:   src,
		tester: numtheory.NewTester(numtheory.SmallPrimes(), cfg.Witnesses),
		e:      big.NewInt(e),
	}
}

// SetSeed restarts the generator's randomness from seed.
func (g *Generator) SetSeed(seed int64) {
	g.rand.SetSeed(seed)
}

func (g *Generator) logf(format string, a ...interface{}) {
	logf(dInfo, "keygen", format, a...)
}

// Generate creates a key pair with a default Generator.
func Generate(ctx context.Context, bits int) (*KeyPair, error) {
	return NewGenerator(Config{}).Generate(ctx, bits)
}

// Generate creates a key pair whose prime factors are drawn from
// [2^(bits-2), 2^(bits-1)]. It returns ctx.Err() if ctx is done before the
// key is complete; nothing is kept from an abandoned attempt.
func (g *Generator) Generate(ctx context.Context, bits int) (*KeyPair, error) {
	if bits < MinKeyBits || bits > MaxKeyBits {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidKeyLength, bits, MinKeyBits, MaxKeyBits)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	lo := new(big.Int).Lsh(one, uint(bits-2))
	hi := new(big.Int).Lsh(lo, 1)

	g.logf("searching for p in [2^%d, 2^%d]", bits-2, bits-1)
	p, err := g.rand.RandomPrimeInRange(ctx, lo, hi, g.tester)
	if err != nil {
		return nil, err
	}
	q := p
	for q.Cmp(p) == 0 {
		g.logf("searching for q")
		q, err = g.rand.RandomPrimeInRange(ctx, lo, hi, g.tester)
		if err != nil {
			return nil, err
		}
	}

	n := new(big.Int).Mul(p, q)
	phi := totient(p, q)

	e := new(big.Int).Mod(g.e, phi)
	phiMinus1 := new(big.Int).Sub(phi, one)
	for e.Cmp(one) <= 0 || numtheory.GCD(phi, e).Cmp(one) != 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logf(dWarning, "keygen", "e = %v unusable with phi = %v, resampling", e, phi)
		e, err = g.rand.RandomInRange(big.NewInt(2), phiMinus1)
		if err != nil {
			return nil, err
		}
	}

	d, err := numtheory.ModInverse(e, phi)
	if err != nil {
		// gcd(e, phi) = 1 was established above
		return nil, fmt.Errorf("inverting e = %v mod %v: %w", e, phi, err)
	}

	k := &KeyPair{id: uuid.New(), n: n, e: e, d: d, p: p, q: q}
	g.logf("generated key %s with %d-bit modulus", k.id, k.Bits())
	if IsDump() {
		logf(dDump, "keygen", "%s", Dump(k))
	}
	return k, nil
}
