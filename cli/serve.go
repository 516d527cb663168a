package main

import (
	"fmt"
	"math/big"

	"github.com/c-w-inf/myrsa/network"
	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

var peerFlag = &cli.StringFlag{
	Name:     "peer",
	Aliases:  []string{"p"},
	Usage:    "Full multiaddr of the key service node, as printed by serve",
	Required: true,
	EnvVars:  []string{"MYRSA_PEER"},
}

var remoteCommands = []*cli.Command{
	{
		Name:  "keygen",
		Usage: "Have the node generate a key pair",
		Flags: []cli.Flag{
			peerFlag,
			&cli.IntFlag{Name: "bits", Aliases: []string{"b"}, Value: textbookrsa.DefaultKeyBits},
		},
		Action: RemoteKeygen,
	},
	{
		Name:  "decrypt",
		Usage: "Have the node decrypt a number with one of its keys",
		Flags: []cli.Flag{
			peerFlag,
			&cli.StringFlag{Name: "id", Required: true},
			&cli.StringFlag{Name: "ciphertext", Aliases: []string{"c"}, Required: true, Usage: "Decimal ciphertext"},
		},
		Action: RemoteDecrypt,
	},
}

func Serve(cCtx *cli.Context) error {
	store, err := openStore(cCtx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	cp, err := network.NewLibp2p(cCtx.Context, cCtx.String("listen"))
	if err != nil {
		return err
	}
	defer cp.Close()

	svc := network.NewKeyService(textbookrsa.NewGenerator(configFromFlags(cCtx)), store)
	if err := cp.Register(svc); err != nil {
		return fmt.Errorf("failed to register key service: %w", err)
	}
	fmt.Printf("Key service listening on %s\n", cp.Me())

	<-cCtx.Context.Done()
	fmt.Println("Shutting down")
	return nil
}

func dialPeer(cCtx *cli.Context) (*network.KeyClient, func() error, error) {
	cp, err := network.NewLibp2p(cCtx.Context, network.DefaultListenAddr)
	if err != nil {
		return nil, nil, err
	}
	return network.NewKeyClient(cp, cCtx.String("peer")), cp.Close, nil
}

func RemoteKeygen(cCtx *cli.Context) error {
	client, closeFn, err := dialPeer(cCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	id, pub, err := client.Generate(cCtx.Context, cCtx.Int("bits"))
	if err != nil {
		return fmt.Errorf("remote key generation failed: %w", err)
	}
	fmt.Printf("id = %s\n", id)
	fmt.Printf("n  = %s\n", pub.N)
	fmt.Printf("e  = %s\n", pub.E)
	return nil
}

func RemoteDecrypt(cCtx *cli.Context) error {
	id, err := uuid.Parse(cCtx.String("id"))
	if err != nil {
		return fmt.Errorf("invalid key id %q: %w", cCtx.String("id"), err)
	}
	c, ok := new(big.Int).SetString(cCtx.String("ciphertext"), 10)
	if !ok {
		return fmt.Errorf("ciphertext %q is not a decimal number", cCtx.String("ciphertext"))
	}

	client, closeFn, err := dialPeer(cCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	m, err := client.Decrypt(cCtx.Context, id, c)
	if err != nil {
		return fmt.Errorf("remote decryption failed: %w", err)
	}
	fmt.Println(m)
	return nil
}
