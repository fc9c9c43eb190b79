// SPDX-License-Identifier: Apache-2.0

package waterfall

import (
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/waterfallconf/waterfall/internal/keystore"
	"github.com/waterfallconf/waterfall/internal/logger"
	"github.com/waterfallconf/waterfall/internal/resolver"
	"github.com/waterfallconf/waterfall/internal/secrets"
	"github.com/waterfallconf/waterfall/internal/source"
)

// Config is the effective, profile-scoped configuration view. It is built
// once by [New], owns its merged view and cipher engine exclusively, and is
// never mutated afterwards, which makes it safe for unsynchronized
// concurrent reads.
type Config struct {
	id      uuid.UUID
	log     *logger.Logger
	chain   resolver.Chain
	profile string
	engine  *secrets.Engine // nil while encryption is disabled
}

// New loads all five sources, merges them by precedence, applies profile
// scoping, and initializes the cipher engine when encryption is enabled.
// Every failure is reported as [ErrInitialization]; there is no partially
// initialized result.
func New(opts ...Option) (*Config, error) {
	start := time.Now()

	s, err := buildSettings(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInitialization, err)
	}

	c := &Config{id: uuid.New(), log: s.Logger}
	c.log.Debug().Stringer("instance", c.id).Msg("initializing configuration")

	common, err := source.FromYAML(s.Resources, s.CommonResource)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInitialization, err)
	}
	envSrc := source.FromEnvironment()
	props := source.FromProperties(s.Args, s.Properties)

	// The application resource name can be redirected before the resource
	// itself is loaded, so the redirect key is read from the three sources
	// whose names do not depend on it.
	discovery := resolver.New(resolver.At(common), resolver.At(envSrc), resolver.At(props))
	appResource := s.AppResource
	if name, ok := discovery.Scalar(MetaAppResource); ok && name != "" {
		appResource = name
	}

	// The external file is the application resource's bare filename,
	// resolved against the working directory.
	external, err := source.FromYAML(os.DirFS(s.WorkDir), path.Base(appResource))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInitialization, err)
	}
	app, err := source.FromYAML(s.Resources, appResource)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInitialization, err)
	}

	full := resolver.Waterfall(external, envSrc, props, app, common)
	c.profile, _ = full.Scalar(MetaProfile)
	c.chain = resolver.Scope(c.profile, external, envSrc, props, app, common)

	if err := c.initEncryption(s.Resources); err != nil {
		return nil, err
	}

	c.log.Debug().
		Stringer("instance", c.id).
		Str("profile", c.profile).
		Bool("encryption", c.engine != nil).
		Dur("took", time.Since(start)).
		Msg("configuration initialized")
	return c, nil
}

// initEncryption reads the encryption meta keys from the fully scoped view
// and, when enabled, fetches key material from the trust store and binds the
// cipher engine. All parameters are required; any missing key, trust-store
// failure, or rejected cryptographic parameter aborts initialization.
func (c *Config) initEncryption(resources fs.FS) error {
	v, ok := c.chain.Lookup(MetaEncryptionEnabled)
	if !ok {
		return nil
	}
	if v.IsList || v.Encrypted {
		return fmt.Errorf("%w: %s must be a plain boolean value", ErrInitialization, MetaEncryptionEnabled)
	}
	enabled, err := strconv.ParseBool(v.Scalar)
	if err != nil {
		return fmt.Errorf("%w: %s must be a boolean: %s", ErrInitialization, MetaEncryptionEnabled, err)
	}
	if !enabled {
		return nil
	}

	var (
		algorithm     = c.requiredMeta(MetaEncryptionAlgorithm, &err)
		keyType       = c.requiredMeta(MetaEncryptionKeyType, &err)
		storePath     = c.requiredMeta(MetaEncryptionKeystorePath, &err)
		storePassword = c.requiredMeta(MetaEncryptionKeystorePassword, &err)
		keyAlias      = c.requiredMeta(MetaEncryptionKeyAlias, &err)
		keyPassword   = c.requiredMeta(MetaEncryptionKeyPassword, &err)
		encodedIV     = c.requiredMeta(MetaEncryptionIV, &err)
	)
	if err != nil {
		return err
	}

	f, err := resources.Open(storePath)
	if err != nil {
		return fmt.Errorf("%w: open key store %s: %s", ErrInitialization, storePath, err)
	}
	defer f.Close()

	store, err := keystore.Open(f, storePassword)
	if err != nil {
		return fmt.Errorf("%w: key store %s: %s", ErrInitialization, storePath, err)
	}
	key, err := store.Key(keyAlias, keyPassword)
	if err != nil {
		c.log.Error().Str("alias", keyAlias).Str("keystore", storePath).Msg("key not recoverable from key store")
		return fmt.Errorf("%w: %s", ErrInitialization, err)
	}

	iv, err := base64.StdEncoding.DecodeString(encodedIV)
	if err != nil {
		return fmt.Errorf("%w: %s is not valid base64: %s", ErrInitialization, MetaEncryptionIV, err)
	}

	engine, err := secrets.New(algorithm, keyType, key, iv)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInitialization, err)
	}
	c.engine = engine
	return nil
}

// requiredMeta reads a mandatory scalar meta key, accumulating a missing-key
// failure into *err so all parameters can be declared in one block.
func (c *Config) requiredMeta(key string, err *error) string {
	v, ok := c.chain.Scalar(key)
	if !ok && *err == nil {
		*err = fmt.Errorf("%w: missing required key %q", ErrInitialization, key)
	}
	return v
}

// Get returns the string value for key from the profile-scoped view. A value
// following the cipher(<base64>) convention is decrypted transparently and
// the recovered UTF-8 text returned in its place.
//
// Fails with [ErrKeyNotFound] if no source defines the key (or it is
// multivalued), [ErrEncryptionNotEnabled] if the value is encrypted while
// the engine is not ready, and [ErrDecryptionFailed] if the ciphertext is
// rejected.
func (c *Config) Get(key string) (string, error) {
	start := time.Now()

	v, ok := c.chain.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}
	if v.IsList {
		return "", fmt.Errorf("%q is multivalued: %w", key, ErrKeyNotFound)
	}

	value := v.Scalar
	if v.Encrypted {
		if c.engine == nil {
			return "", fmt.Errorf("%q: %w", key, ErrEncryptionNotEnabled)
		}
		plaintext, err := c.engine.Decrypt(v.Scalar)
		if err != nil {
			c.log.Error().Str("key", key).Msg("error trying to decrypt value")
			return "", fmt.Errorf("%q: %w", key, err)
		}
		value = string(plaintext)
	}

	c.log.Debug().
		Stringer("instance", c.id).
		Str("key", key).
		Dur("took", time.Since(start)).
		Msg("config read")
	return value, nil
}

// GetList returns the ordered string list stored at key.
//
// Cipher markers inside list elements are not resolved; encrypted lists are
// unsupported. Fails with [ErrKeyNotFound] if the key is absent or not
// representable as a list.
func (c *Config) GetList(key string) ([]string, error) {
	v, ok := c.chain.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}
	if !v.IsList {
		return nil, fmt.Errorf("%q is not multivalued: %w", key, ErrKeyNotFound)
	}
	return append([]string(nil), v.List...), nil
}

// Seal encrypts plaintext with the bound engine and returns it in the
// cipher(<base64>) form, ready to be pasted into a configuration source.
// Fails with [ErrEncryptionNotEnabled] while the engine is not ready.
func (c *Config) Seal(plaintext string) (string, error) {
	if c.engine == nil {
		return "", ErrEncryptionNotEnabled
	}
	ciphertext, err := c.engine.Encrypt([]byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("seal value: %w", err)
	}
	return secrets.WrapMarker(ciphertext), nil
}

// Profile returns the active profile name, or "" when no profile is set.
func (c *Config) Profile() string {
	return c.profile
}

// EncryptionEnabled reports whether the cipher engine is ready.
func (c *Config) EncryptionEnabled() bool {
	return c.engine != nil
}

// InstanceID returns the identity this instance tags its log entries with.
func (c *Config) InstanceID() uuid.UUID {
	return c.id
}
