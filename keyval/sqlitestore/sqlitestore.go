// Package sqlitestore backs the durable credential tier with a local
// SQLite database.
package sqlitestore

import (
	"database/sql"

	"github.com/hkominsky/bullseye-client/keyval"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var _ keyval.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.Open] open database")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlitestore.Open] create schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", keyval.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "[sqlitestore] get")
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return errors.Wrap(err, "[sqlitestore] set")
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM entries WHERE key = ?`, key)
	return errors.Wrap(err, "[sqlitestore] delete")
}

func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM entries`)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitestore] keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.Wrap(err, "[sqlitestore] scan key")
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
