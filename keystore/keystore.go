// Package keystore keeps generated key pairs in a SQLite database.
package keystore

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/c-w-inf/myrsa/textbookrsa"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("key not found")

const createKeys = `
CREATE TABLE IF NOT EXISTS keys (
	id TEXT PRIMARY KEY,
	bits INTEGER NOT NULL,
	n TEXT NOT NULL,
	e TEXT NOT NULL,
	d TEXT NOT NULL,
	p TEXT NOT NULL,
	q TEXT NOT NULL,
	created_at DATETIME NOT NULL
);`

// Entry describes a stored key without its components.
type Entry struct {
	ID        uuid.UUID
	Bits      int
	CreatedAt time.Time
}

// Store is a key pair database. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens, creating if needed, the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createKeys); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating keys table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores k, replacing any key with the same id.
func (s *Store) Put(k *textbookrsa.KeyPair) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO keys (id, bits, n, e, d, p, q, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		k.ID().String(), k.Bits(),
		k.N().String(), k.E().String(), k.D().String(), k.P().String(), k.Q().String(),
		time.Now().UTC())
	return err
}

// Get loads the key with the given id and checks it is still a valid key.
func (s *Store) Get(id uuid.UUID) (*textbookrsa.KeyPair, error) {
	var n, e, d, p, q string
	err := s.db.QueryRow("SELECT n, e, d, p, q FROM keys WHERE id = ?", id.String()).
		Scan(&n, &e, &d, &p, &q)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	vals := make([]*big.Int, 5)
	for i, str := range []string{n, e, d, p, q} {
		v, ok := new(big.Int).SetString(str, 10)
		if !ok {
			return nil, fmt.Errorf("key %s: malformed component %q", id, str)
		}
		vals[i] = v
	}
	return textbookrsa.NewKeyPair(id, vals[0], vals[1], vals[2], vals[3], vals[4])
}

// List returns the stored keys, newest first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query("SELECT id, bits, created_at FROM keys ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var id string
		var e Entry
		if err := rows.Scan(&id, &e.Bits, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("malformed key id %q: %w", id, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the key with the given id.
func (s *Store) Delete(id uuid.UUID) error {
	res, err := s.db.Exec("DELETE FROM keys WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
