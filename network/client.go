package network

import (
	"context"
	"fmt"
	"math/big"

	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/google/uuid"
)

// KeyClient calls the KeyService at server through a ConnectionProvider.
type KeyClient struct {
	cp     ConnectionProvider
	server string
}

func NewKeyClient(cp ConnectionProvider, server string) *KeyClient {
	return &KeyClient{cp: cp, server: server}
}

func (c *KeyClient) call(ctx context.Context, method string, args interface{}, reply interface{}) error {
	if err := c.cp.Call(ctx, c.server, keyServiceName, method, args, reply); err != nil {
		return fmt.Errorf("%s.%s: %w", keyServiceName, method, err)
	}
	return nil
}

// Generate asks the server for a new key and returns its id and public key.
func (c *KeyClient) Generate(ctx context.Context, bits int) (uuid.UUID, textbookrsa.PublicKey, error) {
	var reply KeyReply
	if err := c.call(ctx, "Generate", GenerateArgs{Bits: bits}, &reply); err != nil {
		return uuid.Nil, textbookrsa.PublicKey{}, err
	}
	return parseKeyReply(reply)
}

func (c *KeyClient) PublicKey(ctx context.Context, id uuid.UUID) (textbookrsa.PublicKey, error) {
	var reply KeyReply
	if err := c.call(ctx, "PublicKey", KeyArgs{ID: id.String()}, &reply); err != nil {
		return textbookrsa.PublicKey{}, err
	}
	_, pub, err := parseKeyReply(reply)
	return pub, err
}

func (c *KeyClient) Encrypt(ctx context.Context, pub textbookrsa.PublicKey, m *big.Int) (*big.Int, error) {
	var reply ValueReply
	args := EncryptArgs{N: pub.N.Bytes(), E: pub.E.Bytes(), Value: m.Bytes()}
	if err := c.call(ctx, "Encrypt", args, &reply); err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(reply.Value), nil
}

func (c *KeyClient) Decrypt(ctx context.Context, id uuid.UUID, ciphertext *big.Int) (*big.Int, error) {
	var reply ValueReply
	args := DecryptArgs{ID: id.String(), Value: ciphertext.Bytes()}
	if err := c.call(ctx, "Decrypt", args, &reply); err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(reply.Value), nil
}

func parseKeyReply(reply KeyReply) (uuid.UUID, textbookrsa.PublicKey, error) {
	id, err := uuid.Parse(reply.ID)
	if err != nil {
		return uuid.Nil, textbookrsa.PublicKey{}, fmt.Errorf("malformed key id %q: %w", reply.ID, err)
	}
	pub := textbookrsa.PublicKey{
		N: new(big.Int).SetBytes(reply.N),
		E: new(big.Int).SetBytes(reply.E),
	}
	return id, pub, nil
}
