package internal

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lectern/internal/content"
	"github.com/starford/lectern/internal/quiz"
	"github.com/starford/lectern/internal/secrets"
	"github.com/starford/lectern/internal/watch"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Library LibraryConfig     `yaml:"library"`
	Corpus  CorpusConfig      `yaml:"corpus"`
	Secrets SecretsConfig     `yaml:"secrets"`
	Auth    AuthConfig        `yaml:"auth"`
	Quiz    QuizConfig        `yaml:"quiz"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.App.HTTP,
		validation.Field(&c.App.HTTP.Host, validation.By(exposedRequiresAuth(c.Auth))),
	)
}

// exposedRequiresAuth rejects binding beyond loopback while auth is disabled.
// Anyone who reaches the API can register "/" as a source.
func exposedRequiresAuth(auth AuthConfig) validation.RuleFunc {
	return func(value any) error {
		host, _ := value.(string)
		if IsLoopbackHost(host) || auth.AuthEnabled() {
			return nil
		}
		return fmt.Errorf("host %q is not loopback; set auth.mode to %q", host, AuthModeToken)
	}
}

// IsLoopbackHost reports whether host only accepts local connections. An
// empty host listens on every interface.
func IsLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFile, when set, sends logs to a rotated file instead of the console.
	LogFile string     `yaml:"log_file"`
	HTTP    HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return net.JoinHostPort(strings.Trim(c.Host, "[]"), strconv.Itoa(c.Port))
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LibraryConfig locates the application's private data and bundled
// resources.
type LibraryConfig struct {
	DataDir     string `yaml:"data_dir"`
	ResourceDir string `yaml:"resource_dir"`
	CacheSize   int    `yaml:"cache_size"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.CacheSize, validation.Min(0)),
	)
}

// CorpusConfig lists extra directories searched for corpus files.
type CorpusConfig struct {
	ExtraDirs []string `yaml:"extra_dirs"`
}

// SecretsConfig names the credential store service.
type SecretsConfig struct {
	Service string `yaml:"service"`
}

// QuizConfig selects the model used for comprehension questions.
type QuizConfig struct {
	Model string `yaml:"model"`
}

// WatchConfig controls the library file watcher.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 8080,
			},
		},
		Library: LibraryConfig{
			DataDir:   "./data",
			CacheSize: content.DefaultCacheSize,
		},
		Secrets: SecretsConfig{
			Service: secrets.DefaultService,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Quiz: QuizConfig{
			Model: quiz.DefaultModel,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: watch.DefaultDebounce,
		},
	}
}
