package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/c-w-inf/myrsa/keystore"
	"github.com/c-w-inf/myrsa/network"
	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/urfave/cli/v2"
)

var generatorFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "bits",
		Aliases: []string{"b"},
		Usage:   "Key length; both primes are drawn from [2^(bits-2), 2^(bits-1)]",
		Value:   textbookrsa.DefaultKeyBits,
		EnvVars: []string{"MYRSA_BITS"},
	},
	&cli.Int64Flag{
		Name:    "seed",
		Usage:   "Seed for deterministic generation (default: crypto/rand)",
		EnvVars: []string{"MYRSA_SEED"},
	},
	&cli.IntFlag{
		Name:    "witnesses",
		Usage:   "Number of small primes used as Miller-Rabin bases (0: all of them)",
		EnvVars: []string{"MYRSA_WITNESSES"},
	},
	&cli.IntFlag{
		Name:    "max-attempts",
		Usage:   "Give up a prime search after this many candidates (0: never)",
		EnvVars: []string{"MYRSA_MAX_ATTEMPTS"},
	},
	&cli.Int64Flag{
		Name:    "exponent",
		Aliases: []string{"e"},
		Usage:   "Preferred public exponent",
		Value:   textbookrsa.DefaultPublicExponent,
		EnvVars: []string{"MYRSA_EXPONENT"},
	},
}

var storeFlag = &cli.StringFlag{
	Name:    "store",
	Aliases: []string{"s"},
	Usage:   "Path to the SQLite key store",
	EnvVars: []string{"MYRSA_STORE"},
}

var commands = []*cli.Command{
	{
		Name:  "keygen",
		Usage: "Generate a key pair",
		Flags: append([]cli.Flag{
			storeFlag,
			&cli.BoolFlag{
				Name:  "show-private",
				Usage: "Also print d, p and q",
			},
		}, generatorFlags...),
		Action: Keygen,
	},
	{
		Name:      "encrypt",
		Usage:     "Encrypt a message with a stored key, or with --n and --e",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			storeFlag,
			&cli.StringFlag{Name: "id", Usage: "Id of the stored key"},
			&cli.StringFlag{Name: "n", Usage: "Modulus, in decimal"},
			&cli.StringFlag{Name: "e", Usage: "Public exponent, in decimal"},
		},
		Action: Encrypt,
	},
	{
		Name:      "decrypt",
		Usage:     "Decrypt a base64 ciphertext with a stored key",
		ArgsUsage: "<ciphertext>",
		Flags: []cli.Flag{
			storeFlag,
			&cli.StringFlag{Name: "id", Usage: "Id of the stored key", Required: true},
		},
		Action: Decrypt,
	},
	{
		Name:   "keys",
		Usage:  "List stored keys",
		Flags:  []cli.Flag{storeFlag},
		Action: ListKeys,
	},
	{
		Name:  "demo",
		Usage: "Generate a key, encrypt a number with it and decrypt it again",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "plaintext",
				Aliases: []string{"m"},
				Usage:   "Number to encrypt, in decimal",
				Value:   "42",
			},
		}, generatorFlags...),
		Action: Demo,
	},
	{
		Name:  "attack",
		Usage: "Demonstrate recovering a message encrypted twice under one modulus",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "plaintext",
				Aliases: []string{"m"},
				Usage:   "Number to encrypt, in decimal",
				Value:   "42",
			},
		}, generatorFlags...),
		Action: Attack,
	},
	{
		Name:  "base64",
		Usage: "Encode stdin to stdout, or decode with -d",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "decode", Aliases: []string{"d"}, Usage: "Decode instead of encode"},
		},
		Action: Base64,
	},
	{
		Name:  "serve",
		Usage: "Run a key service node",
		Flags: append([]cli.Flag{
			storeFlag,
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Multiaddr to listen on",
				Value:   network.DefaultListenAddr,
				EnvVars: []string{"MYRSA_LISTEN"},
			},
		}, generatorFlags...),
		Action: Serve,
	},
	{
		Name:        "remote",
		Usage:       "Talk to a key service node",
		Subcommands: remoteCommands,
	},
}

func main() {
	app := &cli.App{
		Name:     "myrsa",
		Usage:    "Textbook RSA key generation and encryption",
		Commands: commands,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "Log generation progress"},
			&cli.BoolFlag{Name: "dump", Usage: "With --debug, also log generated keys in full"},
		},
		Before: func(cCtx *cli.Context) error {
			if cCtx.IsSet("debug") {
				textbookrsa.SetDebug(cCtx.Bool("debug"), cCtx.Bool("dump"))
			}
			return nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configFromFlags(cCtx *cli.Context) textbookrsa.Config {
	cfg := textbookrsa.Config{
		Witnesses:      cCtx.Int("witnesses"),
		MaxAttempts:    cCtx.Int("max-attempts"),
		PublicExponent: cCtx.Int64("exponent"),
	}
	if cCtx.IsSet("seed") {
		seed := cCtx.Int64("seed")
		cfg.Seed = &seed
	}
	return cfg
}

func openStore(cCtx *cli.Context) (*keystore.Store, error) {
	path := cCtx.String("store")
	if path == "" {
		return nil, nil
	}
	store, err := keystore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key store: %w", err)
	}
	return store, nil
}

func requireStore(cCtx *cli.Context) (*keystore.Store, error) {
	store, err := openStore(cCtx)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("--store is required")
	}
	return store, nil
}
