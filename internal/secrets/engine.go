// SPDX-License-Identifier: Apache-2.0

// Package secrets implements the cipher engine behind the cipher(<base64>)
// value convention: one algorithm, one key, and one initialization vector
// fixed at construction time, with a fresh transform built for every call so
// the engine is safe for unsynchronized concurrent use.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrDecryptionFailed indicates that a ciphertext was rejected by the bound
// transform: wrong key, corrupted ciphertext, or an algorithm mismatch.
// Retrying cannot change the outcome.
var ErrDecryptionFailed = errors.New("could not decrypt config value")

// gcmNonceSize is the standard 96-bit AES-GCM nonce length.
const gcmNonceSize = 12

type mode int

const (
	modeCBC mode = iota
	modeGCM
)

// Engine holds the immutable algorithm/key/IV binding for the lifetime of
// the process. There is no re-keying and no rotation.
type Engine struct {
	algorithm string
	mode      mode
	key       []byte
	iv        []byte
}

// New validates the cryptographic parameters and binds them into an Engine.
//
// Supported algorithm identifiers are AES/CBC/PKCS5Padding (PKCS7Padding is
// accepted as an alias) and AES/GCM/NoPadding. keyType must be "AES". The IV
// must be exactly one block (16 bytes) for CBC and 12 bytes for GCM. Any
// rejected parameter is an error; a half-configured Engine is never returned.
func New(algorithm, keyType string, key, iv []byte) (*Engine, error) {
	if keyType != "AES" {
		return nil, fmt.Errorf("unsupported key type %q", keyType)
	}

	var m mode
	switch strings.ToUpper(algorithm) {
	case "AES/CBC/PKCS5PADDING", "AES/CBC/PKCS7PADDING":
		m = modeCBC
	case "AES/GCM/NOPADDING":
		m = modeGCM
	default:
		return nil, fmt.Errorf("unsupported cipher algorithm %q", algorithm)
	}

	// Validates the key size (16, 24 or 32 bytes) up front.
	if _, err := aes.NewCipher(key); err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}

	switch m {
	case modeCBC:
		if len(iv) != aes.BlockSize {
			return nil, fmt.Errorf("initialization vector must be %d bytes, got %d", aes.BlockSize, len(iv))
		}
	case modeGCM:
		if len(iv) != gcmNonceSize {
			return nil, fmt.Errorf("initialization vector must be %d bytes for GCM, got %d", gcmNonceSize, len(iv))
		}
	}

	return &Engine{
		algorithm: algorithm,
		mode:      m,
		key:       append([]byte(nil), key...),
		iv:        append([]byte(nil), iv...),
	}, nil
}

// Algorithm returns the identifier the engine was bound to.
func (e *Engine) Algorithm() string {
	return e.algorithm
}

// Decrypt base64-decodes ciphertextB64 and applies the bound transform,
// returning the recovered plaintext bytes. Every failure, from a malformed
// base64 payload to a padding or authentication error, is reported as
// [ErrDecryptionFailed].
//
// A fresh transform is constructed per call from the immutable key+IV, so
// concurrent callers never share cipher state.
func (e *Engine) Decrypt(ciphertextB64 string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecryptionFailed, err)
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecryptionFailed, err)
	}

	switch e.mode {
	case modeGCM:
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrDecryptionFailed, err)
		}
		plaintext, err := gcm.Open(nil, e.iv, raw, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrDecryptionFailed, err)
		}
		return plaintext, nil

	default: // modeCBC
		if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
			return nil, fmt.Errorf("%w: ciphertext is not a whole number of blocks", ErrDecryptionFailed)
		}
		plaintext := make([]byte, len(raw))
		cipher.NewCBCDecrypter(block, e.iv).CryptBlocks(plaintext, raw)
		unpadded, err := pkcs7Unpad(plaintext)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrDecryptionFailed, err)
		}
		return unpadded, nil
	}
}

// Encrypt is the inverse of [Engine.Decrypt]: it applies the bound transform
// to plaintext and returns the base64 ciphertext, ready to be wrapped with
// [WrapMarker]. Like Decrypt it builds a fresh transform per call.
func (e *Engine) Encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	switch e.mode {
	case modeGCM:
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return "", fmt.Errorf("create gcm: %w", err)
		}
		return base64.StdEncoding.EncodeToString(gcm.Seal(nil, e.iv, plaintext, nil)), nil

	default: // modeCBC
		padded := pkcs7Pad(plaintext)
		ciphertext := make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, e.iv).CryptBlocks(ciphertext, padded)
		return base64.StdEncoding.EncodeToString(ciphertext), nil
	}
}

func pkcs7Pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, errors.New("empty plaintext")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errors.New("invalid padding")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
