// Package localstore implements the embedded SQLite store that holds the
// pre-migration card and collection data, mirroring the browser-local
// database the records originally lived in.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNoProfile is returned when the local store has no user profile row.
// Migration cannot start without one.
var ErrNoProfile = errors.New("no local user profile")

// Store wraps the embedded database. A single logical writer touches it at
// a time; the mutex keeps accidental concurrent use honest.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the embedded store at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	// The driver is happiest with a single connection for a file store.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize local schema: %w", err)
		}
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the filesystem location of the store.
func (s *Store) Path() string {
	return s.path
}

// Profile is the single ambient user identity the browser app kept in
// session state.
type Profile struct {
	ID       string
	Username string
	Email    string
}

func (s *Store) GetProfile() (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT id, username, IFNULL(email, '') FROM profile LIMIT 1`)
	p := new(Profile)
	if err := row.Scan(&p.ID, &p.Username, &p.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoProfile
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProfile(p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO profile (id, username, email) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, email = excluded.email`,
		p.ID, p.Username, p.Email)
	return err
}
