package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Client configures the storefront client. Variables use the STOREFRONT_ prefix.
type Client struct {
	APIURL      string        `envconfig:"API_URL" default:"http://localhost:8000/api"`
	StorageURL  string        `envconfig:"STORAGE_URL" default:"http://localhost:8000/storage"`
	Debounce    time.Duration `envconfig:"DEBOUNCE" default:"500ms"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"10s"`
	SessionFile string        `envconfig:"SESSION_FILE"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"warn"`
}

// Server configures the development backend. Variables use the DEVAPI_ prefix.
type Server struct {
	Addr        string        `envconfig:"ADDR" default:":8000"`
	DatabaseURL string        `envconfig:"DATABASE_URL"`
	JWTSecret   string        `envconfig:"JWT_SECRET" default:"dev-secret"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"72h"`
	StorageDir  string        `envconfig:"STORAGE_DIR" default:"./storage"`
	PageSize    int           `envconfig:"PAGE_SIZE" default:"12"`
	Seed        bool          `envconfig:"SEED" default:"true"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	MaxOpenConn int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConn int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
}

// InMemory reports whether the backend should run without Postgres.
func (s Server) InMemory() bool { return s.DatabaseURL == "" }

// LoadClient reads .env when present, then the environment.
func LoadClient() (Client, error) {
	_ = godotenv.Load()
	var c Client
	if err := envconfig.Process("storefront", &c); err != nil {
		return Client{}, errors.Wrap(err, "load storefront config")
	}
	return c, nil
}

func LoadServer() (Server, error) {
	_ = godotenv.Load()
	var s Server
	if err := envconfig.Process("devapi", &s); err != nil {
		return Server{}, errors.Wrap(err, "load devapi config")
	}
	if s.PageSize <= 0 {
		return Server{}, errors.Errorf("DEVAPI_PAGE_SIZE must be positive, got %d", s.PageSize)
	}
	return s, nil
}
