package main

import (
	"fmt"
	"math/big"

	"github.com/c-w-inf/myrsa/numtheory"
	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/urfave/cli/v2"
)

// Attack encrypts one message under two public exponents sharing a modulus
// and recovers it from the ciphertexts and public values alone.
func Attack(cCtx *cli.Context) error {
	m, ok := new(big.Int).SetString(cCtx.String("plaintext"), 10)
	if !ok {
		return fmt.Errorf("plaintext %q is not a decimal number", cCtx.String("plaintext"))
	}

	gen := textbookrsa.NewGenerator(configFromFlags(cCtx))
	k, err := gen.Generate(cCtx.Context, cCtx.Int("bits"))
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	n, e1 := k.N(), k.E()

	e2 := big.NewInt(3)
	for numtheory.GCD(e1, e2).Cmp(big.NewInt(1)) != 0 {
		e2.Add(e2, big.NewInt(2))
	}

	fmt.Printf("Shared modulus n = %s\n", n)
	fmt.Printf("User 1: e1 = %s\n", e1)
	fmt.Printf("User 2: e2 = %s\n", e2)
	fmt.Printf("Plaintext m = %s\n", m)

	c1, err := k.EncryptWith(e1, m)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}
	c2, err := k.EncryptWith(e2, m)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}
	fmt.Printf("c1 = m^e1 mod n = %s\n", c1)
	fmt.Printf("c2 = m^e2 mod n = %s\n", c2)

	_, s, t := numtheory.ExtendedGCD(e1, e2)
	fmt.Printf("s*e1 + t*e2 = 1 with s = %s, t = %s\n", s, t)

	recovered, err := textbookrsa.RecoverCommonModulus(n, e1, e2, c1, c2)
	if err != nil {
		return fmt.Errorf("attack failed: %w", err)
	}
	fmt.Printf("Recovered m = c1^s * c2^t mod n = %s\n", recovered)
	if recovered.Cmp(m) == 0 {
		fmt.Println("Attack succeeded: never share a modulus between users.")
	} else {
		fmt.Println("Attack failed.")
	}
	return nil
}
