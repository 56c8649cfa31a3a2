// internal/config/loader.go
//
// Configuration loader and reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env` file.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `LAUNCHPAD_`, where `__` maps to “.”
     (e.g., `LAUNCHPAD_SITE__SECRET_KEY → site.secret_key`).

When `vault.enabled` is true every string value of the form
`vault:<mount>/<path>#<key>` is swapped for the secret it names.  The tree
is then unmarshalled, defaulted, validated, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` calls `Load()` again and
swaps the pointer.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, vault resolution.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`, so
    `go run ./cmd/web` works from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/launchpad/internal/vault"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "LAUNCHPAD_"

// Defaults applied to zero values after unmarshal.
const (
	DefaultListenAddr    = ":8080"
	DefaultSiteName      = "Launchpad"
	DefaultCSRFTimeLimit = time.Hour
	DefaultMailPort      = 587
	DefaultVaultTTL      = 5 * time.Minute
	DefaultFormsDir      = "conf/forms"
	DefaultLogDir        = "logs"
)

var current atomic.Pointer[Config]

// Resolver turns a vault: reference into its secret.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// resolverFactory builds the Resolver once vault.enabled is known.
type resolverFactory func(ctx context.Context, ttl time.Duration) (Resolver, error)

func vaultResolver(ctx context.Context, ttl time.Duration) (Resolver, error) {
	return vault.New(ctx, ttl, zap.S().Infof)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves LAUNCHPAD_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to the executable's parent when it
// lives in bin/.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, and env overrides, resolves vault references,
// validates, and caches Config.  ctx bounds Vault calls and the token
// renewal loop.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := load(ctx, rootDir(), vaultResolver)
	if err != nil {
		return nil, err
	}
	current.Store(cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"mail", cfg.Mail.Enabled(),
		"database", cfg.Database.DSN != "",
		"root", cfg.Paths.Root,
	)
	return cfg, nil
}

func load(ctx context.Context, root string, newResolver resolverFactory) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, fmt.Errorf("load %s: %w", yamlPath, err)
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// LAUNCHPAD_MAIL__USE_TLS → mail.use_tls
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("env overlay: %w", err)
	}
	k.Delete("root") // LAUNCHPAD_ROOT is consumed by rootDir

	if k.Bool("vault.enabled") {
		if err := resolveRefs(ctx, k, newResolver); err != nil {
			zap.S().Errorw("config vault resolution failed", "err", err)
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}
	return &cfg, nil
}

// resolveRefs replaces every vault: string in k.
func resolveRefs(ctx context.Context, k *koanf.Koanf, newResolver resolverFactory) error {
	ttl := DefaultVaultTTL
	if s := k.String("vault.cache_ttl"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("vault.cache_ttl: %w", err)
		}
		ttl = d
	}

	res, err := newResolver(ctx, ttl)
	if err != nil {
		return fmt.Errorf("vault client: %w", err)
	}

	n := 0
	for key, val := range k.All() {
		ref, ok := val.(string)
		if !ok || !vault.IsRef(ref) {
			continue
		}
		secret, err := res.Resolve(ctx, ref)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		if err := k.Set(key, secret); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		n++
	}
	zap.S().Debugw("config vault references resolved", "count", n)
	return nil
}

// applyDefaults fills zero values and anchors relative paths at Root.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = DefaultListenAddr
	}
	if c.Site.Name == "" {
		c.Site.Name = DefaultSiteName
	}
	if c.Site.CSRFTimeLimit == 0 {
		c.Site.CSRFTimeLimit = DefaultCSRFTimeLimit
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = DefaultMailPort
	}
	if c.Vault.CacheTTL == 0 {
		c.Vault.CacheTTL = DefaultVaultTTL
	}
	if c.Paths.FormsDir == "" {
		c.Paths.FormsDir = DefaultFormsDir
	}
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = DefaultLogDir
	}

	c.Paths.ThemeDir = anchor(c.Paths.Root, c.Paths.ThemeDir)
	c.Paths.FormsDir = anchor(c.Paths.Root, c.Paths.FormsDir)
	c.Paths.LogDir = anchor(c.Paths.Root, c.Paths.LogDir)
}

func anchor(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the last loaded Config, or nil before the first Load.
func Get() *Config { return current.Load() }

// Reload re-reads every layer and swaps the cached Config on success.
func Reload(ctx context.Context) error { _, err := Load(ctx); return err }
