package project

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or blank.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// Default values for [build].
const (
	DefaultSrc    = "src"
	DefaultOut    = "build"
	DefaultOutExt = ".c"
	SourceExt     = ".lisp"
)

type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	Src    string `toml:"src"`
	Out    string `toml:"out"`
	OutExt string `toml:"out_ext"`
	// Jobs is the number of files compiled in parallel; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
	// MaxDepth bounds call nesting in the parser; 0 means unbounded.
	MaxDepth int `toml:"max_depth"`
}

// Manifest is a loaded lispc.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// SrcDir is the absolute source directory.
func (m *Manifest) SrcDir() string {
	return m.resolve(m.Config.Build.Src)
}

// OutDir is the absolute output directory.
func (m *Manifest) OutDir() string {
	return m.resolve(m.Config.Build.Out)
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// Default returns the configuration written by `lispc init`.
func Default(name string) Config {
	return Config{
		Package: PackageConfig{Name: name},
		Build: BuildConfig{
			Src:    DefaultSrc,
			Out:    DefaultOut,
			OutExt: DefaultOutExt,
		},
	}
}

// Load finds lispc.toml above startDir and decodes it. ok is false when no
// manifest exists.
func Load(startDir string) (manifest *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// LoadFile decodes and validates one manifest and fills in defaults.
func LoadFile(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validate(meta, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a manifest from r; used for manifests that are not on disk.
func Decode(r io.Reader) (Config, error) {
	var cfg Config
	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := validate(meta, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(meta toml.MetaData, cfg *Config) error {
	if !meta.IsDefined("package") {
		return ErrPackageSectionMissing
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return ErrPackageNameMissing
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	b := &cfg.Build
	if strings.TrimSpace(b.Src) == "" {
		b.Src = DefaultSrc
	}
	if strings.TrimSpace(b.Out) == "" {
		b.Out = DefaultOut
	}
	if b.OutExt == "" {
		b.OutExt = DefaultOutExt
	}
	if !strings.HasPrefix(b.OutExt, ".") {
		b.OutExt = "." + b.OutExt
	}
	if b.Jobs < 0 {
		return fmt.Errorf("[build].jobs must be >= 0, got %d", b.Jobs)
	}
	if b.MaxDepth < 0 {
		return fmt.Errorf("[build].max_depth must be >= 0, got %d", b.MaxDepth)
	}
	return nil
}

// Encode writes cfg as TOML with a header comment.
func Encode(w io.Writer, cfg Config) error {
	if _, err := io.WriteString(w, "# lispc project manifest\n"); err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(cfg)
}
