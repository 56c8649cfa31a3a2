// internal/config/model.go
//
// Typed configuration model for Launchpad.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                             – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `LAUNCHPAD_`-prefixed environment overrides – highest precedence.
//
// Any string value that begins with `vault:` is resolved through the Vault
// client *before* unmarshalling when `vault.enabled` is true, so the model
// never stores Vault references, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations accept Go syntax (“1h”, “90s”).
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Site section
//

// Site carries the public name and the signing secret.  SecretKey keys both
// the CSRF tokens and the flash cookie, so it must be long and private.
type Site struct {
	Name          string        `koanf:"name"            validate:"required"`
	SecretKey     string        `koanf:"secret_key"      validate:"required,min=16"`
	CSRFTimeLimit time.Duration `koanf:"csrf_time_limit" validate:"gte=0"`
}

//
// Mail section
//

// Mail configures owner notifications.  An empty Server disables mail and
// notifications are written to the log instead.
type Mail struct {
	Server   string        `koanf:"server"`
	Port     int           `koanf:"port"      validate:"gte=0,lte=65535"`
	UseTLS   bool          `koanf:"use_tls"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"      validate:"omitempty,email"`
	NotifyTo []string      `koanf:"notify_to" validate:"omitempty,dive,email"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Enabled reports whether an SMTP relay is configured.
func (m Mail) Enabled() bool { return m.Server != "" }

//
// Database section
//

// Database holds the MySQL DSN.  Empty disables persistence.
type Database struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `koanf:"max_idle_conns" validate:"gte=0"`
}

//
// Vault section
//

// Vault toggles reference resolution.  Address and token come from the
// standard VAULT_ADDR and VAULT_TOKEN variables.
type Vault struct {
	Enabled  bool          `koanf:"enabled"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

//
// Paths section
//

// Paths locates on-disk resources.  Relative values are resolved against
// Root after loading.  Root itself is discovered at runtime.
type Paths struct {
	Root     string `koanf:"-"`
	ThemeDir string `koanf:"theme_dir"`
	FormsDir string `koanf:"forms_dir"`
	LogDir   string `koanf:"log_dir"`
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Site     Site     `koanf:"site"`
	Mail     Mail     `koanf:"mail"`
	Database Database `koanf:"database"`
	Vault    Vault    `koanf:"vault"`
	Paths    Paths    `koanf:"paths"`
}
