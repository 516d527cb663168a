package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"

	"github.com/c-w-inf/myrsa/keystore"
	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/google/uuid"
)

const keyServiceName = "KeyService"

var ErrUnknownKey = errors.New("unknown key")

// Big integers cannot be sent over rpc as-is, so they travel as big-endian bytes.

type GenerateArgs struct {
	Bits int
}

type KeyArgs struct {
	ID string
}

type KeyReply struct {
	ID   string
	N, E []byte
}

type EncryptArgs struct {
	N, E  []byte
	Value []byte
}

type DecryptArgs struct {
	ID    string
	Value []byte
}

type ValueReply struct {
	Value []byte
}

// KeyService generates key pairs for remote callers and decrypts with
// them; private components never leave the service. Keys are kept in
// memory and, if a store is given, persisted to it.
type KeyService struct {
	gen   *textbookrsa.Generator
	store *keystore.Store

	mu   sync.Mutex
	keys map[uuid.UUID]*textbookrsa.KeyPair
}

// NewKeyService returns a service generating keys with gen. store may be nil.
func NewKeyService(gen *textbookrsa.Generator, store *keystore.Store) *KeyService {
	return &KeyService{
		gen:   gen,
		store: store,
		keys:  make(map[uuid.UUID]*textbookrsa.KeyPair),
	}
}

func (s *KeyService) logf(format string, a ...interface{}) {
	if textbookrsa.IsDebug() {
		log.Printf("[key service] "+format, a...)
	}
}

func (s *KeyService) Generate(ctx context.Context, args GenerateArgs, reply *KeyReply) error {
	k, err := s.gen.Generate(ctx, args.Bits)
	if err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.Put(k); err != nil {
			return fmt.Errorf("storing key %s: %w", k.ID(), err)
		}
	}
	s.mu.Lock()
	s.keys[k.ID()] = k
	s.mu.Unlock()
	s.logf("generated key %s (%d bits)", k.ID(), k.Bits())

	fillKeyReply(reply, k)
	return nil
}

func (s *KeyService) PublicKey(ctx context.Context, args KeyArgs, reply *KeyReply) error {
	k, err := s.lookup(args.ID)
	if err != nil {
		return err
	}
	fillKeyReply(reply, k)
	return nil
}

// Encrypt needs no stored key: anyone holding (n, e) may encrypt.
func (s *KeyService) Encrypt(ctx context.Context, args EncryptArgs, reply *ValueReply) error {
	n := new(big.Int).SetBytes(args.N)
	e := new(big.Int).SetBytes(args.E)
	c, err := textbookrsa.EncryptWith(n, e, new(big.Int).SetBytes(args.Value))
	if err != nil {
		return err
	}
	reply.Value = c.Bytes()
	return nil
}

func (s *KeyService) Decrypt(ctx context.Context, args DecryptArgs, reply *ValueReply) error {
	k, err := s.lookup(args.ID)
	if err != nil {
		return err
	}
	m, err := k.Decrypt(new(big.Int).SetBytes(args.Value))
	if err != nil {
		return err
	}
	reply.Value = m.Bytes()
	return nil
}

func (s *KeyService) lookup(rawID string) (*textbookrsa.KeyPair, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, rawID)
	}
	s.mu.Lock()
	k, ok := s.keys[id]
	s.mu.Unlock()
	if ok {
		return k, nil
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, id)
	}
	k, err = s.store.Get(id)
	if errors.Is(err, keystore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, id)
	}
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.keys[id] = k
	s.mu.Unlock()
	return k, nil
}

func fillKeyReply(reply *KeyReply, k *textbookrsa.KeyPair) {
	reply.ID = k.ID().String()
	reply.N = k.N().Bytes()
	reply.E = k.E().Bytes()
}
