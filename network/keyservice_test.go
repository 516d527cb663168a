package network

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/c-w-inf/myrsa/keystore"
	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/google/uuid"
)

// localProvider hands calls straight to a KeyService, standing in for the network.
type localProvider struct {
	svc *KeyService
}

func (p localProvider) Call(ctx context.Context, server string, svcName string, svcMeth string, args interface{}, reply interface{}) error {
	if svcName != keyServiceName {
		return fmt.Errorf("unknown service %s", svcName)
	}
	switch svcMeth {
	case "Generate":
		return p.svc.Generate(ctx, args.(GenerateArgs), reply.(*KeyReply))
	case "PublicKey":
		return p.svc.PublicKey(ctx, args.(KeyArgs), reply.(*KeyReply))
	case "Encrypt":
		return p.svc.Encrypt(ctx, args.(EncryptArgs), reply.(*ValueReply))
	case "Decrypt":
		return p.svc.Decrypt(ctx, args.(DecryptArgs), reply.(*ValueReply))
	}
	return fmt.Errorf("unknown method %s", svcMeth)
}

func newService(seed int64, store *keystore.Store) *KeyService {
	return NewKeyService(textbookrsa.NewGenerator(textbookrsa.Config{Seed: &seed}), store)
}

func roundTrip(t *testing.T, c *KeyClient, bits int) {
	t.Helper()
	ctx := context.Background()
	id, pub, err := c.Generate(ctx, bits)
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.PublicKey(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.N.Cmp(pub.N) != 0 || got.E.Cmp(pub.E) != 0 {
		t.Fatalf("PublicKey disagrees with Generate")
	}

	m, err := textbookrsa.PrepareMsg([]byte("i am a squid"), pub.N)
	if err != nil {
		t.Fatal(err)
	}
	ct, err := c.Encrypt(ctx, pub, m)
	if err != nil {
		t.Fatal(err)
	}
	local, err := pub.Encrypt(m)
	if err != nil {
		t.Fatal(err)
	}
	if ct.Cmp(local) != 0 {
		t.Fatalf("remote and local encryption differ")
	}
	pt, err := c.Decrypt(ctx, id, ct)
	if err != nil {
		t.Fatal(err)
	}
	if string(textbookrsa.ExtractMsg(pt)) != "i am a squid" {
		t.Fatalf("decrypted %q", textbookrsa.ExtractMsg(pt))
	}
}

func TestKeyClientLocal(t *testing.T) {
	c := NewKeyClient(localProvider{newService(1, nil)}, "")
	roundTrip(t, c, 128)
}

func TestKeyServiceErrors(t *testing.T) {
	svc := newService(2, nil)
	ctx := context.Background()

	var kr KeyReply
	if err := svc.Generate(ctx, GenerateArgs{Bits: 1}, &kr); !errors.Is(err, textbookrsa.ErrInvalidKeyLength) {
		t.Fatalf("expected ErrInvalidKeyLength, got %v", err)
	}
	if err := svc.PublicKey(ctx, KeyArgs{ID: uuid.New().String()}, &kr); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	var vr ValueReply
	if err := svc.Decrypt(ctx, DecryptArgs{ID: "not-a-uuid"}, &vr); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}

	if err := svc.Generate(ctx, GenerateArgs{Bits: 32}, &kr); err != nil {
		t.Fatal(err)
	}
	n := new(big.Int).SetBytes(kr.N)
	err := svc.Decrypt(ctx, DecryptArgs{ID: kr.ID, Value: n.Bytes()}, &vr)
	if !errors.Is(err, textbookrsa.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestKeyServicePersists(t *testing.T) {
	store, err := keystore.Open(filepath.Join(t.TempDir(), "keys.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	first := NewKeyClient(localProvider{newService(3, store)}, "")
	id, pub, err := first.Generate(ctx, 64)
	if err != nil {
		t.Fatal(err)
	}
	ct, err := pub.Encrypt(big.NewInt(424242))
	if err != nil {
		t.Fatal(err)
	}

	// a fresh service only knows the key through the store
	second := NewKeyClient(localProvider{newService(4, store)}, "")
	pt, err := second.Decrypt(ctx, id, ct)
	if err != nil {
		t.Fatal(err)
	}
	if pt.Int64() != 424242 {
		t.Fatalf("decrypted %v, want 424242", pt)
	}
}

func newLibp2pNode(t *testing.T, seed int64) *Libp2pConnectionProvider {
	t.Helper()
	cp, err := NewLibp2p(context.Background(), "/ip4/127.0.0.1/tcp/0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cp.Close() })
	if err := cp.Register(newService(seed, nil)); err != nil {
		t.Fatal(err)
	}
	return cp
}

func TestKeyClientLibp2pSelf(t *testing.T) {
	cp := newLibp2pNode(t, 5)
	if cp.Me() == "" {
		t.Fatalf("node has no address")
	}
	roundTrip(t, NewKeyClient(cp, cp.Me()), 64)
	roundTrip(t, NewKeyClient(cp, ""), 64)
}

func TestKeyClientLibp2pRemote(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a second libp2p host")
	}
	server := newLibp2pNode(t, 6)
	client, err := NewLibp2p(context.Background(), "/ip4/127.0.0.1/tcp/0")
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	c := NewKeyClient(client, server.Me())
	roundTrip(t, c, 64)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var kr KeyReply
	err = client.Call(ctx, server.Me(), keyServiceName, "PublicKey", KeyArgs{ID: uuid.New().String()}, &kr)
	if err == nil {
		t.Fatalf("expected an error for an unknown key")
	}
}
