package waterfall

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/waterfallconf/waterfall/internal/logger"
)

// settings holds the bootstrap knobs of the resolver itself: where resources
// live and what they are called. They are assembled from three layers, the
// first to set a field wins:
//  1. functional options passed to [New]
//  2. WATERFALL_-prefixed environment variables
//  3. built-in defaults
type settings struct {
	// CommonResource is the in-artifact reference resource name.
	// Env: WATERFALL_COMMON_RESOURCE
	CommonResource string `env:"COMMON_RESOURCE"`

	// AppResource is the default in-artifact application resource name,
	// before any MetaAppResource redirect.
	// Env: WATERFALL_APP_RESOURCE
	AppResource string `env:"APP_RESOURCE"`

	// WorkDir is the directory the external application file is resolved
	// against.
	// Env: WATERFALL_WORK_DIR
	WorkDir string `env:"WORK_DIR"`

	// Resources is the filesystem holding the in-artifact resources,
	// normally an embed.FS. Defaults to the working directory.
	Resources fs.FS `env:"-"`

	// Args is the command line scanned for -Dkey=value process properties.
	Args []string `env:"-"`

	// ArgsSet records that Args was supplied explicitly, so an empty
	// command line is honored instead of refilled from os.Args.
	ArgsSet bool `env:"-"`

	// Properties are programmatic process properties; they win over Args.
	Properties map[string]string `env:"-"`

	// Logger receives init and read diagnostics. Nil means silent.
	Logger *logger.Logger `env:"-"`
}

// Option customizes one bootstrap setting of [New].
type Option func(*settings)

// WithResources sets the filesystem the in-artifact resources and the trust
// store are loaded from, typically an embed.FS of the application binary.
func WithResources(fsys fs.FS) Option {
	return func(s *settings) { s.Resources = fsys }
}

// WithWorkDir sets the directory the external application file is looked up
// in. Defaults to the current working directory.
func WithWorkDir(dir string) Option {
	return func(s *settings) { s.WorkDir = dir }
}

// WithCommonResource overrides the common resource name
// (default "config/common.yaml").
func WithCommonResource(name string) Option {
	return func(s *settings) { s.CommonResource = name }
}

// WithAppResource overrides the default application resource name
// (default "config/application.yaml").
func WithAppResource(name string) Option {
	return func(s *settings) { s.AppResource = name }
}

// WithArgs overrides the command line scanned for -Dkey=value properties.
// Defaults to os.Args[1:]; nil or an empty slice suppresses the scan.
func WithArgs(args []string) Option {
	return func(s *settings) {
		s.Args = args
		s.ArgsSet = true
	}
}

// WithProperties supplies process properties programmatically. They take
// precedence over -D definitions of the same key.
func WithProperties(props map[string]string) Option {
	return func(s *settings) { s.Properties = props }
}

// WithLogger enables init and read diagnostics on the given logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.Logger = logger.Wrap(l) }
}

type settingsBuilder struct {
	layers []*settings
	err    error
}

func newSettingsBuilder() *settingsBuilder {
	return &settingsBuilder{layers: make([]*settings, 0, 3)}
}

func (b *settingsBuilder) withOptions(opts []Option) *settingsBuilder {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	b.layers = append(b.layers, s)
	return b
}

func (b *settingsBuilder) withEnv() *settingsBuilder {
	s := &settings{}
	if err := env.ParseWithOptions(s, env.Options{Prefix: "WATERFALL_"}); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error getting env settings: %w", err))
		return b
	}
	b.layers = append(b.layers, s)
	return b
}

func (b *settingsBuilder) withDefaults() *settingsBuilder {
	b.layers = append(b.layers, &settings{
		CommonResource: "config/common.yaml",
		AppResource:    "config/application.yaml",
		WorkDir:        ".",
	})
	return b
}

func (b *settingsBuilder) build() (*settings, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building settings: %w", b.err)
	}

	merged := new(settings)
	for _, layer := range b.layers {
		if err := mergo.Merge(merged, layer); err != nil {
			return nil, fmt.Errorf("error merging settings: %w", err)
		}
	}

	if !merged.ArgsSet {
		merged.Args = os.Args[1:]
	}
	if merged.Resources == nil {
		merged.Resources = os.DirFS(merged.WorkDir)
	}
	if merged.Logger == nil {
		merged.Logger = logger.Nop()
	}
	return merged, nil
}

func buildSettings(opts []Option) (*settings, error) {
	return newSettingsBuilder().
		withOptions(opts).
		withEnv().
		withDefaults().
		build()
}
