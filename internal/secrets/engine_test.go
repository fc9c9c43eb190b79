package secrets

import (
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
)

func testEngine(t *testing.T, algorithm string, ivLen int) *Engine {
	t.Helper()
	key := bytes.Repeat([]byte{0x2A}, 32)
	iv := bytes.Repeat([]byte{0x17}, ivLen)
	e, err := New(algorithm, "AES", key, iv)
	if err != nil {
		t.Fatalf("New(%q) error: %v", algorithm, err)
	}
	return e
}

func TestNew_RejectsUnknownAlgorithm(t *testing.T) {
	_, err := New("DES/CBC/PKCS5Padding", "AES", bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 16))
	if err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}

func TestNew_RejectsUnknownKeyType(t *testing.T) {
	_, err := New("AES/CBC/PKCS5Padding", "DES", bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 16))
	if err == nil {
		t.Fatalf("expected error for unsupported key type")
	}
}

func TestNew_RejectsBadKeySize(t *testing.T) {
	_, err := New("AES/CBC/PKCS5Padding", "AES", bytes.Repeat([]byte{1}, 15), bytes.Repeat([]byte{2}, 16))
	if err == nil {
		t.Fatalf("expected error for 15-byte key")
	}
}

func TestNew_RejectsWrongIVLength(t *testing.T) {
	if _, err := New("AES/CBC/PKCS5Padding", "AES", bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 12)); err == nil {
		t.Fatalf("expected error for 12-byte CBC IV")
	}
	if _, err := New("AES/GCM/NoPadding", "AES", bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 16)); err == nil {
		t.Fatalf("expected error for 16-byte GCM nonce")
	}
}

func TestEncryptDecrypt_RoundTripCBC(t *testing.T) {
	e := testEngine(t, "AES/CBC/PKCS5Padding", aes.BlockSize)

	ct, err := e.Encrypt([]byte("secret-value"))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	pt, err := e.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if string(pt) != "secret-value" {
		t.Fatalf("round trip = %q, want %q", pt, "secret-value")
	}
}

func TestEncryptDecrypt_RoundTripGCM(t *testing.T) {
	e := testEngine(t, "AES/GCM/NoPadding", gcmNonceSize)

	ct, err := e.Encrypt([]byte("secret-value"))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	pt, err := e.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if string(pt) != "secret-value" {
		t.Fatalf("round trip = %q, want %q", pt, "secret-value")
	}
}

func TestEncrypt_RoundTripsBlockAlignedPlaintext(t *testing.T) {
	e := testEngine(t, "AES/CBC/PKCS5Padding", aes.BlockSize)

	// Exactly one block, so padding adds a full extra block.
	plaintext := bytes.Repeat([]byte{0x41}, aes.BlockSize)
	ct, err := e.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(ct)
	if err != nil {
		t.Fatalf("ciphertext is not valid base64: %v", err)
	}
	if len(raw) != 2*aes.BlockSize {
		t.Fatalf("ciphertext length = %d, want %d", len(raw), 2*aes.BlockSize)
	}

	pt, err := e.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecrypt_TamperedCiphertextFails(t *testing.T) {
	e := testEngine(t, "AES/GCM/NoPadding", gcmNonceSize)

	ct, err := e.Encrypt([]byte("secret-value"))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(ct)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	raw[0] ^= 0x01
	_, err = e.Decrypt(base64.StdEncoding.EncodeToString(raw))
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecrypt_RejectsPartialBlock(t *testing.T) {
	e := testEngine(t, "AES/CBC/PKCS5Padding", aes.BlockSize)

	ct := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x55}, aes.BlockSize+1))
	if _, err := e.Decrypt(ct); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed for partial block, got %v", err)
	}
}

func TestDecrypt_RejectsEmptyCiphertext(t *testing.T) {
	e := testEngine(t, "AES/CBC/PKCS5Padding", aes.BlockSize)

	if _, err := e.Decrypt(""); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed for empty ciphertext, got %v", err)
	}
}

func TestDecrypt_RejectsMalformedBase64(t *testing.T) {
	e := testEngine(t, "AES/GCM/NoPadding", gcmNonceSize)

	if _, err := e.Decrypt("%%% not base64 %%%"); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed for bad base64, got %v", err)
	}
}

func TestDecrypt_ConcurrentCallsDoNotShareState(t *testing.T) {
	e := testEngine(t, "AES/CBC/PKCS5Padding", aes.BlockSize)

	first, err := e.Encrypt([]byte("first-plaintext"))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	second, err := e.Encrypt([]byte("second-plaintext"))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			pt, err := e.Decrypt(first)
			if err != nil || string(pt) != "first-plaintext" {
				t.Errorf("Decrypt(first) = %q, %v", pt, err)
			}
		}()
		go func() {
			defer wg.Done()
			pt, err := e.Decrypt(second)
			if err != nil || string(pt) != "second-plaintext" {
				t.Errorf("Decrypt(second) = %q, %v", pt, err)
			}
		}()
	}
	wg.Wait()
}

func TestParseMarker(t *testing.T) {
	payload, ok := ParseMarker("cipher(YWJj)")
	if !ok || payload != "YWJj" {
		t.Fatalf("ParseMarker = %q, %v; want %q, true", payload, ok, "YWJj")
	}

	for _, v := range []string{"plain", "cipher(", "cipher", "Cipher(YWJj)", ""} {
		if _, ok := ParseMarker(v); ok {
			t.Fatalf("ParseMarker(%q) unexpectedly matched", v)
		}
	}
}

func TestWrapMarker_RoundTrip(t *testing.T) {
	wrapped := WrapMarker("YWJj")
	if wrapped != "cipher(YWJj)" {
		t.Fatalf("WrapMarker = %q", wrapped)
	}
	payload, ok := ParseMarker(wrapped)
	if !ok || payload != "YWJj" {
		t.Fatalf("round trip = %q, %v", payload, ok)
	}
}
