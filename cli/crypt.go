package main

import (
	"fmt"
	"io/ioutil"
	"math/big"
	"os"
	"strings"

	"github.com/c-w-inf/myrsa/radix64"
	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

// loadKey reads the key named by --id from the store.
func loadKey(cCtx *cli.Context) (*textbookrsa.KeyPair, error) {
	id, err := uuid.Parse(cCtx.String("id"))
	if err != nil {
		return nil, fmt.Errorf("invalid key id %q: %w", cCtx.String("id"), err)
	}
	store, err := requireStore(cCtx)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Get(id)
}

func publicKeyFromFlags(cCtx *cli.Context) (textbookrsa.PublicKey, error) {
	if cCtx.IsSet("id") {
		k, err := loadKey(cCtx)
		if err != nil {
			return textbookrsa.PublicKey{}, err
		}
		return k.Public(), nil
	}
	n, okN := new(big.Int).SetString(cCtx.String("n"), 10)
	e, okE := new(big.Int).SetString(cCtx.String("e"), 10)
	if !okN || !okE {
		return textbookrsa.PublicKey{}, fmt.Errorf("either --id or both --n and --e (decimal) are required")
	}
	return textbookrsa.PublicKey{N: n, E: e}, nil
}

// argOrStdin returns the first argument, or all of stdin without the
// trailing newline if there is none.
func argOrStdin(cCtx *cli.Context) (string, error) {
	if cCtx.Args().Present() {
		return cCtx.Args().First(), nil
	}
	data, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func Encrypt(cCtx *cli.Context) error {
	pub, err := publicKeyFromFlags(cCtx)
	if err != nil {
		return err
	}
	msg, err := argOrStdin(cCtx)
	if err != nil {
		return err
	}
	m, err := textbookrsa.PrepareMsg([]byte(msg), pub.N)
	if err != nil {
		return err
	}
	c, err := pub.Encrypt(m)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}
	fmt.Println(radix64.Encode(c.Bytes()))
	return nil
}

func Decrypt(cCtx *cli.Context) error {
	k, err := loadKey(cCtx)
	if err != nil {
		return err
	}
	code, err := argOrStdin(cCtx)
	if err != nil {
		return err
	}
	raw, err := radix64.Decode(strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	m, err := k.Decrypt(new(big.Int).SetBytes(raw))
	if err != nil {
		return fmt.Errorf("failed to decrypt: %w", err)
	}
	fmt.Println(string(textbookrsa.ExtractMsg(m)))
	return nil
}

// Base64 encodes stdin to stdout, or decodes it with --decode.
func Base64(cCtx *cli.Context) error {
	data, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	if !cCtx.Bool("decode") {
		fmt.Print(radix64.Encode(data))
		return nil
	}
	out, err := radix64.Decode(strings.TrimRight(string(data), "\r\n"))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
