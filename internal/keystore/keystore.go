// SPDX-License-Identifier: Apache-2.0

// Package keystore implements the trust store the cipher engine fetches its
// key material from: a JSON container of AES-GCM-sealed symmetric keys,
// addressed by alias. The store password authenticates the container as a
// whole; each entry is additionally protected by its own key password.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	formatVersion = 1
	kdfIterations = 120_000
	// maxKdfIterations caps what an untrusted container may demand from
	// PBKDF2.
	maxKdfIterations = 10_000_000
	saltSize         = 16
	derivedKeyLen    = 32
)

// verifierPlaintext is sealed under the store key at save time; recovering
// it proves the store password on open.
var verifierPlaintext = []byte("waterfall.keystore.v1")

var (
	// ErrWrongStorePassword indicates the container could not be
	// authenticated with the given store password.
	ErrWrongStorePassword = errors.New("key store authentication failed")
	// ErrAliasNotFound indicates the requested alias is absent.
	ErrAliasNotFound = errors.New("key alias not found in key store")
	// ErrWrongKeyPassword indicates the entry exists but its key material
	// could not be recovered with the given key password.
	ErrWrongKeyPassword = errors.New("could not recover key material")
)

type entry struct {
	Salt []byte `json:"salt"`
	Blob []byte `json:"blob"` // nonce ‖ sealed key material
}

type container struct {
	Version    int              `json:"version"`
	Iterations int              `json:"iterations"`
	Salt       []byte           `json:"salt"`
	Verifier   []byte           `json:"verifier"`
	Entries    map[string]entry `json:"entries"`
}

// Store is an open trust store. Entries are sealed at rest and unsealed only
// by [Store.Key].
type Store struct {
	password   string
	iterations int
	salt       []byte
	entries    map[string]entry
}

// Create builds a new empty store protected by storePassword.
func Create(storePassword string) (*Store, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate store salt: %w", err)
	}
	return &Store{
		password:   storePassword,
		iterations: kdfIterations,
		salt:       salt,
		entries:    make(map[string]entry),
	}, nil
}

// Open reads a serialized store from r and authenticates it with
// storePassword. A wrong password is reported as [ErrWrongStorePassword];
// entries stay sealed until fetched.
func Open(r io.Reader, storePassword string) (*Store, error) {
	var c container
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode key store: %w", err)
	}
	if c.Version != formatVersion {
		return nil, fmt.Errorf("unsupported key store version %d", c.Version)
	}
	if c.Iterations <= 0 || len(c.Salt) == 0 {
		return nil, errors.New("malformed key store: missing derivation parameters")
	}
	if c.Iterations > maxKdfIterations {
		return nil, fmt.Errorf("malformed key store: %d derivation iterations exceeds the %d limit", c.Iterations, maxKdfIterations)
	}

	storeKey := derive(storePassword, c.Salt, c.Iterations)
	plain, err := unseal(storeKey, c.Verifier)
	if err != nil || string(plain) != string(verifierPlaintext) {
		return nil, ErrWrongStorePassword
	}

	entries := c.Entries
	if entries == nil {
		entries = make(map[string]entry)
	}
	return &Store{
		password:   storePassword,
		iterations: c.Iterations,
		salt:       c.Salt,
		entries:    entries,
	}, nil
}

// Contains reports whether an entry exists for alias.
func (s *Store) Contains(alias string) bool {
	_, ok := s.entries[alias]
	return ok
}

// Key unseals and returns the raw symmetric key bytes stored under alias.
func (s *Store) Key(alias, keyPassword string) ([]byte, error) {
	e, ok := s.entries[alias]
	if !ok {
		return nil, fmt.Errorf("%q: %w", alias, ErrAliasNotFound)
	}
	key, err := unseal(derive(keyPassword, e.Salt, s.iterations), e.Blob)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", alias, ErrWrongKeyPassword)
	}
	return key, nil
}

// Put seals key under keyPassword and stores it at alias, replacing any
// previous entry.
func (s *Store) Put(alias, keyPassword string, key []byte) error {
	if alias == "" {
		return errors.New("alias must not be empty")
	}
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("generate entry salt: %w", err)
	}
	blob, err := seal(derive(keyPassword, salt, s.iterations), key)
	if err != nil {
		return fmt.Errorf("seal key material: %w", err)
	}
	s.entries[alias] = entry{Salt: salt, Blob: blob}
	return nil
}

// Save serializes the store to w, resealing the verifier under the store
// password.
func (s *Store) Save(w io.Writer) error {
	verifier, err := seal(derive(s.password, s.salt, s.iterations), verifierPlaintext)
	if err != nil {
		return fmt.Errorf("seal verifier: %w", err)
	}

	c := container{
		Version:    formatVersion,
		Iterations: s.iterations,
		Salt:       s.salt,
		Verifier:   verifier,
		Entries:    s.entries,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode key store: %w", err)
	}
	return nil
}

func derive(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, derivedKeyLen, sha256.New)
}

// seal encrypts plaintext with AES-256-GCM under key, prepending the random
// nonce: blob = nonce ‖ ciphertext.
func seal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return append(nonce, gcm.Seal(nil, nonce, plaintext, nil)...), nil
}

func unseal(key, blob []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(blob) < gcm.NonceSize() {
		return nil, errors.New("sealed blob too short")
	}
	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
