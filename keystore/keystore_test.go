package keystore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/google/uuid"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "keys.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func genKey(t *testing.T, seed int64) *textbookrsa.KeyPair {
	t.Helper()
	g := textbookrsa.NewGenerator(textbookrsa.Config{Seed: &seed})
	k, err := g.Generate(context.Background(), 64)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestPutGet(t *testing.T) {
	s := openTemp(t)
	k := genKey(t, 1)
	if err := s.Put(k); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(k.ID())
	if err != nil {
		t.Fatal(err)
	}
	if got.ID() != k.ID() || got.N().Cmp(k.N()) != 0 || got.D().Cmp(k.D()) != 0 ||
		got.P().Cmp(k.P()) != 0 || got.Q().Cmp(k.Q()) != 0 || got.E().Cmp(k.E()) != 0 {
		t.Fatalf("stored key differs from the original")
	}
	// storing again replaces rather than failing
	if err := s.Put(k); err != nil {
		t.Fatal(err)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Get(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListDelete(t *testing.T) {
	s := openTemp(t)
	a, b := genKey(t, 2), genKey(t, 3)
	for _, k := range []*textbookrsa.KeyPair{a, b} {
		if err := s.Put(k); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("listed %d keys, want 2", len(entries))
	}
	ids := map[uuid.UUID]int{entries[0].ID: entries[0].Bits, entries[1].ID: entries[1].Bits}
	if ids[a.ID()] != a.Bits() || ids[b.ID()] != b.Bits() {
		t.Fatalf("listing %v does not match stored keys", entries)
	}

	if err := s.Delete(a.ID()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(a.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted key still present: %v", err)
	}
	if _, err := s.Get(b.ID()); err != nil {
		t.Fatal(err)
	}
}

func TestGetRejectsCorruptKey(t *testing.T) {
	s := openTemp(t)
	k := genKey(t, 4)
	if err := s.Put(k); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec("UPDATE keys SET d = '12345' WHERE id = ?", k.ID().String()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(k.ID()); !errors.Is(err, textbookrsa.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
