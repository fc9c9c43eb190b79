// Package waterfall resolves application configuration from layered sources
// into one effective key/value view and transparently decrypts secret values
// stored under the cipher(<base64>) convention.
//
// Five sources are consulted, highest priority first: an external
// application file next to the process, environment variables, process
// properties (-Dkey=value arguments or programmatic pairs), the in-artifact
// application resource, and the in-artifact common resource. The first
// source to define a key wins. An active profile, when configured, re-roots
// lookups under that profile's subtree.
//
// A [Config] is built exactly once with [New] and is immutable and safe for
// unsynchronized concurrent reads afterwards:
//
//	cfg, err := waterfall.New(waterfall.WithResources(resourcesFS))
//	if err != nil {
//		log.Fatal(err)
//	}
//	dsn, err := cfg.Get("db.password") // decrypted on read if cipher(...)
package waterfall
