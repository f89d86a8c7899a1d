package configuration

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/pkg/logging"
)

const Production = "production"

const (
	FavoritesFile   = "file"
	FavoritesSQLite = "sqlite"
	FavoritesRedis  = "redis"
	FavoritesMemory = "memory"
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files from the working directory. Files that are
// missing there are looked up next to the nearest go.mod above it.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	root := moduleRoot()
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existingFiles = append(existingFiles, file)
			continue
		}
		if root == "" || filepath.IsAbs(file) {
			continue
		}
		if candidate := filepath.Join(root, file); fs.FileExists(candidate) {
			existingFiles = append(existingFiles, candidate)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// BackendOptions describe the remote REST backend owning tenants, departments and positions.
type BackendOptions struct {
	ServerURL         string        `env:"SERVER_URL" envDefault:"http://144.91.118.87:8081"`
	APIURL            string        `env:"API_URL"`
	Timeout           time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	DeleteConcurrency int           `env:"API_DELETE_CONCURRENCY" envDefault:"8"`
	HealthTimeout     time.Duration `env:"API_HEALTH_TIMEOUT" envDefault:"5s"`
}

// BaseURL returns API_URL when set, otherwise SERVER_URL + "/api".
func (b *BackendOptions) BaseURL() string {
	if v := strings.TrimSpace(b.APIURL); v != "" {
		return strings.TrimRight(v, "/")
	}
	return strings.TrimRight(b.ServerURL, "/") + "/api"
}

func (b *BackendOptions) Validate() error {
	if b.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", b.Timeout)
	}
	if b.DeleteConcurrency <= 0 {
		return fmt.Errorf("API_DELETE_CONCURRENCY must be positive, got %d", b.DeleteConcurrency)
	}
	return nil
}

type FavoritesOptions struct {
	Storage    string `env:"FAVORITES_STORAGE" envDefault:"file"`
	Path       string `env:"FAVORITES_PATH" envDefault:"./data/favorites.json"`
	SQLitePath string `env:"FAVORITES_SQLITE_PATH" envDefault:"./data/console.db"`
	Key        string `env:"FAVORITES_KEY" envDefault:"userFavorites"`
}

func (f *FavoritesOptions) Validate() error {
	switch f.Storage {
	case FavoritesFile, FavoritesSQLite, FavoritesRedis, FavoritesMemory:
	default:
		return fmt.Errorf("invalid FAVORITES_STORAGE=%q (expected file|sqlite|redis|memory)", f.Storage)
	}
	if strings.TrimSpace(f.Key) == "" {
		return fmt.Errorf("FAVORITES_KEY must not be empty")
	}
	return nil
}

type LogOptions struct {
	LogPath string `env:"LOG_PATH" envDefault:"./logs/console.log"`
	AppName string `env:"LOG_APP_NAME" envDefault:"org-console"`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"org-console"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.GlobalRPS > 1000000 {
		return fmt.Errorf("rate limit GlobalRPS too high, maximum is 1,000,000, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type Configuration struct {
	Backend       BackendOptions
	Favorites     FavoritesOptions
	Log           LogOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions

	RedisURL         string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	ServerPort       int           `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string        `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string        `env:"-"`
	Domain           string        `env:"DOMAIN" envDefault:"localhost"`
	Origin           string        `env:"ORIGIN" envDefault:"http://localhost:3200"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	DefaultLocale    string        `env:"DEFAULT_LOCALE" envDefault:"ar"`
	ViewSessionTTL   time.Duration `env:"VIEW_SESSION_TTL" envDefault:"30m"`
	ViewSessionSize  int           `env:"VIEW_SESSION_SIZE" envDefault:"1024"`
	// The console looks for this header in the request, if it's not present, it will generate a random uuidv4
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// If it's not present, request.RemoteAddr is used
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`
	// View session cookie key
	SidCookieKey string `env:"SID_COOKIE_KEY" envDefault:"console_sid"`
	CorsOrigins  string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`

	logFile io.Closer
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func (c *Configuration) Scheme() string {
	if c.GoAppEnvironment == Production { // assume 'https' on production mode
		return "https"
	}
	return "http"
}

func (c *Configuration) AllowedOrigins() []string {
	return strings.FieldsFunc(c.CorsOrigins, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

func Use() *Configuration {
	return singleton()
}

// New parses the environment into a fresh Configuration without touching the
// process-wide singleton. Useful for tools and tests.
func New(envFiles ...string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 && len(envFiles) > 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	if err := c.Backend.Validate(); err != nil {
		return fmt.Errorf("backend configuration error: %w", err)
	}
	if err := c.Favorites.Validate(); err != nil {
		return fmt.Errorf("favorites configuration error: %w", err)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.Log.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}

	if os.Getenv("ORIGIN") == "" {
		if c.GoAppEnvironment == "development" {
			c.Origin = fmt.Sprintf("%s://%s:%d", c.Scheme(), c.Domain, c.ServerPort)
		} else {
			c.Origin = fmt.Sprintf("%s://%s", c.Scheme(), c.Domain)
		}
	}

	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
