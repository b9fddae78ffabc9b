package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"communityPulse/internal/geo"
)

type Config struct {
	Env  string     `yaml:"env" env:"ENV" env-default:"local"`
	API  APIConfig  `yaml:"api"`
	Geo  geo.Config `yaml:"geo"`
	Stub StubConfig `yaml:"stub"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:8000"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"10s"`
	// Token is the bearer token issued by the identity provider; empty for
	// anonymous browsing.
	Token string `yaml:"token" env:"API_TOKEN"`

	RetryAttempts int           `yaml:"retry_attempts" env:"API_RETRY_ATTEMPTS" env-default:"3"`
	RetryInitial  time.Duration `yaml:"retry_initial" env:"API_RETRY_INITIAL" env-default:"500ms"`
	RetryMax      time.Duration `yaml:"retry_max" env:"API_RETRY_MAX" env-default:"5s"`

	MaxDistanceKM float64 `yaml:"max_distance_km" env:"API_MAX_DISTANCE_KM" env-default:"10"`
}

type StubConfig struct {
	Address     string        `yaml:"address" env:"STUB_ADDRESS" env-default:"localhost:8000"`
	Timeout     time.Duration `yaml:"timeout" env:"STUB_TIMEOUT" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"STUB_IDLE_TIMEOUT" env-default:"60s"`
	// StoragePath is the sqlite file; ":memory:" keeps everything in process.
	StoragePath string `yaml:"storage_path" env:"STUB_STORAGE_PATH" env-default:":memory:"`
	AdminEmail  string `yaml:"admin_email" env:"STUB_ADMIN_EMAIL" env-default:"admin@communitypulse.local"`
}

func MustLoad() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")

	var cfg Config

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Fatalf("config file does not exist: %s", configPath)
		}

		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}

		return &cfg
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return &cfg
}
