// Command waterfall resolves configuration keys from the command line and
// manages the trust stores that back encrypted values.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/rs/zerolog"

	"github.com/waterfallconf/waterfall"
	"github.com/waterfallconf/waterfall/internal/keystore"
)

var (
	buildVersion string
	buildCommit  string
)

func main() {
	app := kingpin.New("waterfall", "Layered configuration lookup with on-read secret decryption.")
	app.Version(versionString())

	workdir := app.Flag("workdir", "Directory holding config resources and the external application file.").
		Default(".").String()
	properties := app.Flag("property", "Extra process property (key=value, repeatable).").
		Short('p').StringMap()
	verbose := app.Flag("verbose", "Enable debug logging from the resolver.").
		Short('v').Bool()

	getCmd := app.Command("get", "Resolve a configuration key and print its value.")
	getKey := getCmd.Arg("key", "Dotted configuration key.").Required().String()
	getList := getCmd.Flag("list", "Read the key as a multivalued property.").Bool()

	sealCmd := app.Command("seal", "Encrypt a value and print its cipher(...) form.")
	sealValue := sealCmd.Arg("value", "Plaintext to encrypt.").Required().String()

	ksCmd := app.Command("keystore", "Manage trust stores.")

	ksInit := ksCmd.Command("init", "Create a new empty trust store.")
	ksInitPath := ksInit.Flag("path", "Trust store file to create.").Required().String()
	ksInitPassword := ksInit.Flag("store-password", "Password protecting the store.").Required().String()

	ksAdd := ksCmd.Command("add-key", "Add or replace a symmetric key in a trust store.")
	ksAddPath := ksAdd.Flag("path", "Trust store file to update.").Required().String()
	ksAddPassword := ksAdd.Flag("store-password", "Password protecting the store.").Required().String()
	ksAddAlias := ksAdd.Flag("alias", "Alias to store the key under.").Required().String()
	ksAddKeyPassword := ksAdd.Flag("key-password", "Password protecting this key.").Required().String()
	ksAddKeyB64 := ksAdd.Flag("key-b64", "Base64 key material; a random 256-bit key when omitted.").String()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case getCmd.FullCommand():
		cfg := loadConfig(app, *workdir, *properties, *verbose)
		if *getList {
			values, err := cfg.GetList(*getKey)
			app.FatalIfError(err, "get %s", *getKey)
			for _, v := range values {
				fmt.Println(v)
			}
			return
		}
		value, err := cfg.Get(*getKey)
		app.FatalIfError(err, "get %s", *getKey)
		fmt.Println(value)

	case sealCmd.FullCommand():
		cfg := loadConfig(app, *workdir, *properties, *verbose)
		sealed, err := cfg.Seal(*sealValue)
		app.FatalIfError(err, "seal value")
		fmt.Println(sealed)

	case ksInit.FullCommand():
		app.FatalIfError(initStore(*ksInitPath, *ksInitPassword), "init key store")
		fmt.Printf("created %s\n", *ksInitPath)

	case ksAdd.FullCommand():
		app.FatalIfError(addKey(*ksAddPath, *ksAddPassword, *ksAddAlias, *ksAddKeyPassword, *ksAddKeyB64), "add key")
		fmt.Printf("stored key %q in %s\n", *ksAddAlias, *ksAddPath)
	}
}

func loadConfig(app *kingpin.Application, workdir string, properties map[string]string, verbose bool) *waterfall.Config {
	opts := []waterfall.Option{
		waterfall.WithWorkDir(workdir),
		waterfall.WithProperties(properties),
		waterfall.WithArgs(nil),
	}
	if verbose {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		opts = append(opts, waterfall.WithLogger(log))
	}

	cfg, err := waterfall.New(opts...)
	app.FatalIfError(err, "load configuration")
	return cfg
}

func initStore(path, storePassword string) error {
	store, err := keystore.Create(storePassword)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return store.Save(f)
}

func addKey(path, storePassword, alias, keyPassword, keyB64 string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	store, err := keystore.Open(f, storePassword)
	f.Close()
	if err != nil {
		return err
	}

	key, err := keyMaterial(keyB64)
	if err != nil {
		return err
	}
	if err := store.Put(alias, keyPassword, key); err != nil {
		return err
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()
	return store.Save(out)
}

func keyMaterial(keyB64 string) ([]byte, error) {
	if keyB64 != "" {
		return base64.StdEncoding.DecodeString(keyB64)
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

func versionString() string {
	if buildVersion == "" {
		buildVersion = "dev"
	}
	if buildCommit == "" {
		return buildVersion
	}
	return fmt.Sprintf("%s (%s)", buildVersion, buildCommit)
}
