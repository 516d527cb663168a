package main

import (
	"fmt"
	"math/big"

	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/urfave/cli/v2"
)

func Keygen(cCtx *cli.Context) error {
	store, err := openStore(cCtx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	gen := textbookrsa.NewGenerator(configFromFlags(cCtx))
	fmt.Printf("Generating %d-bit key...\n", cCtx.Int("bits"))
	k, err := gen.Generate(cCtx.Context, cCtx.Int("bits"))
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	fmt.Printf("id = %s\n", k.ID())
	fmt.Printf("n  = %s\n", k.N())
	fmt.Printf("e  = %s\n", k.E())
	if cCtx.Bool("show-private") {
		fmt.Printf("d  = %s\n", k.D())
		fmt.Printf("p  = %s\n", k.P())
		fmt.Printf("q  = %s\n", k.Q())
	}

	if store != nil {
		if err := store.Put(k); err != nil {
			return fmt.Errorf("failed to store key: %w", err)
		}
		fmt.Printf("Stored key %s in %s\n", k.ID(), cCtx.String("store"))
	}
	return nil
}

func ListKeys(cCtx *cli.Context) error {
	store, err := requireStore(cCtx)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	for _, e := range entries {
		fmt.Printf("%s  %5d bits  %s\n", e.ID, e.Bits, e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// Demo generates a key, prints it, and runs one number through encryption
// and decryption.
func Demo(cCtx *cli.Context) error {
	plaintext, ok := new(big.Int).SetString(cCtx.String("plaintext"), 10)
	if !ok {
		return fmt.Errorf("plaintext %q is not a decimal number", cCtx.String("plaintext"))
	}

	gen := textbookrsa.NewGenerator(configFromFlags(cCtx))
	k, err := gen.Generate(cCtx.Context, cCtx.Int("bits"))
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	fmt.Println(textbookrsa.Dump(k))

	ciphertext, err := k.Public().Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}
	decrypted, err := k.Decrypt(ciphertext)
	if err != nil {
		return fmt.Errorf("failed to decrypt: %w", err)
	}
	fmt.Printf("Plaintext  : %s\n", plaintext)
	fmt.Printf("Ciphertext : %s\n", ciphertext)
	fmt.Printf("Decrypted  : %s\n", decrypted)
	return nil
}
