package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/apibillme/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type Store struct {
	db        *sql.DB
	log       zerolog.Logger
	userCache cache.Cache
}

const userTable string = `
  CREATE TABLE IF NOT EXISTS users (
      user TEXT NOT NULL UNIQUE,
      hash TEXT NOT NULL,
      level INT NOT NULL
  )
`

func NewStore(filename string, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "store").Logger()

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", "file:"+filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err = db.Exec(userTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	return &Store{
		db:        db,
		log:       logger,
		userCache: cache.New(256, cache.WithTTL(1*time.Hour)),
	}, nil
}

func (store *Store) Close() error {
	return store.db.Close()
}

// AddUser creates or replaces a user with an argon2id hash of pass.
func (store *Store) AddUser(user string, pass string, level int) error {
	if user == "" || pass == "" {
		return errors.New("user and password must not be empty")
	}
	hash, err := argon2id.CreateHash(pass, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = store.db.Exec("INSERT OR REPLACE INTO users (user, hash, level) VALUES (?,?,?)", user, hash, level)
	if err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	store.userCache.Set(user, passDigest(pass))
	return nil
}

// TestUser checks pass against the stored argon2id hash. A successful check
// is remembered as a sha256 digest of the password, so repeated requests
// skip the argon2id cost until the cache entry expires.
func (store *Store) TestUser(user string, pass string) bool {
	digest := passDigest(pass)
	if verified, ok := store.userCache.Get(user); ok {
		if known, ok := verified.([]byte); ok && subtle.ConstantTimeCompare(known, digest) == 1 {
			return true
		}
	}

	hash, ok := store.userHash(user)
	if !ok {
		return false
	}
	match, err := argon2id.ComparePasswordAndHash(pass, hash)
	if err != nil {
		store.log.Error().Err(err).Str("user", user).Msg("error comparing password hashes")
		return false
	}
	if !match {
		return false
	}
	store.userCache.Set(user, digest)
	return true
}

func (store *Store) userHash(user string) (string, bool) {
	var hash string
	err := store.db.QueryRow("SELECT hash FROM users WHERE user = ?", user).Scan(&hash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false
	case err != nil:
		store.log.Error().Err(err).Msg("failed to look up user")
		return "", false
	}
	return hash, true
}

func passDigest(pass string) []byte {
	sum := sha256.Sum256([]byte(pass))
	return sum[:]
}
