package waterfall

// Reserved meta keys. They control the resolver and the cipher engine
// rather than carrying application data, and may be defined by any source.
const (
	// MetaProfile names the subtree subsequent lookups are scoped under.
	MetaProfile = "waterfall.profile"

	// MetaAppResource overrides the in-artifact application resource name.
	// Read before that resource is loaded, from the common resource, the
	// environment, and process properties only.
	MetaAppResource = "waterfall.app.resource"

	// MetaEncryptionEnabled gates cipher engine initialization. Absent
	// means disabled.
	MetaEncryptionEnabled = "waterfall.encryption.enabled"

	// Cipher engine parameters, all required once encryption is enabled.
	MetaEncryptionAlgorithm        = "waterfall.encryption.algorithm"
	MetaEncryptionKeyType          = "waterfall.encryption.key.type"
	MetaEncryptionKeystorePath     = "waterfall.encryption.keystore.path"
	MetaEncryptionKeystorePassword = "waterfall.encryption.keystore.password"
	MetaEncryptionKeyAlias         = "waterfall.encryption.key.alias"
	MetaEncryptionKeyPassword      = "waterfall.encryption.key.password"
	MetaEncryptionIV               = "waterfall.encryption.iv"
)
