package waterfall

import (
	"errors"

	"github.com/waterfallconf/waterfall/internal/secrets"
)

// Failure modes surfaced by [New], [Config.Get] and [Config.GetList].
var (
	// ErrKeyNotFound indicates the requested key is absent from the fully
	// resolved configuration, or is not representable in the requested
	// shape (scalar vs. list).
	ErrKeyNotFound = errors.New("configuration key not found")

	// ErrEncryptionNotEnabled indicates a cipher(...) value was read while
	// the cipher engine is not initialized.
	ErrEncryptionNotEnabled = errors.New("encryption has not been enabled")

	// ErrDecryptionFailed indicates the cipher engine rejected a
	// ciphertext. Never retried: retrying cannot change a cryptographic
	// mismatch.
	ErrDecryptionFailed = secrets.ErrDecryptionFailed

	// ErrInitialization indicates [New] failed; no partially working
	// configuration is ever returned.
	ErrInitialization = errors.New("could not initialize configuration")
)
