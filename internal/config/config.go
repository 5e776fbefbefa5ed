// Package config loads service and solver settings: defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"weightnav/internal/opt"
)

type Config struct {
	Port        string        `yaml:"port"`
	DatabaseURL string        `yaml:"databaseUrl"`
	DBMigrate   bool          `yaml:"dbMigrate"`
	RedisURL    string        `yaml:"redisUrl"`
	LogLevel    string        `yaml:"logLevel"`
	RateRPS     float64       `yaml:"rateRps"`
	RateBurst   int           `yaml:"rateBurst"`
	Solver      SolverConfig  `yaml:"solver"`
	Webhook     WebhookConfig `yaml:"webhook"`
}

type SolverConfig struct {
	Seed          int64         `yaml:"seed"`
	RandomSeeds   int           `yaml:"randomSeeds"`
	Workers       int           `yaml:"workers"`
	SeedTimeLimit time.Duration `yaml:"seedTimeLimit"`
	MaxMoves      int           `yaml:"maxMoves"`
}

type WebhookConfig struct {
	URL         string `yaml:"url"`
	Secret      string `yaml:"secret"`
	MaxAttempts int    `yaml:"maxAttempts"`
}

// DefaultSeedTimeLimit bounds local search per seed unless configured otherwise;
// 0 in the config file or SOLVER_SEED_TIME_LIMIT removes the bound.
const DefaultSeedTimeLimit = 2 * time.Second

func Default() Config {
	return Config{
		Port:      "8080",
		DBMigrate: true,
		LogLevel:  "info",
		RateRPS:   20,
		RateBurst: 40,
		Solver:    SolverConfig{RandomSeeds: opt.DefaultRandomSeeds, SeedTimeLimit: DefaultSeedTimeLimit},
		Webhook:   WebhookConfig{MaxAttempts: 10},
	}
}

// Load reads path (if not empty) over the defaults and applies the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("PORT", &c.Port)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_URL", &c.RedisURL)
	str("LOG_LEVEL", &c.LogLevel)
	str("WEBHOOK_URL", &c.Webhook.URL)
	str("WEBHOOK_SECRET", &c.Webhook.Secret)
	if v, ok := lookup("DB_MIGRATE"); ok {
		c.DBMigrate = v != "false"
	}

	var firstErr error
	num := func(key string, parse func(string) error) {
		v, ok := lookup(key)
		if !ok || v == "" || firstErr != nil {
			return
		}
		if err := parse(v); err != nil {
			firstErr = errors.Wrapf(err, "env %s", key)
		}
	}
	num("RATE_RPS", func(v string) (err error) { c.RateRPS, err = strconv.ParseFloat(v, 64); return })
	num("RATE_BURST", func(v string) (err error) { c.RateBurst, err = strconv.Atoi(v); return })
	num("WEBHOOK_MAX_ATTEMPTS", func(v string) (err error) { c.Webhook.MaxAttempts, err = strconv.Atoi(v); return })
	num("SOLVER_SEED", func(v string) (err error) { c.Solver.Seed, err = strconv.ParseInt(v, 10, 64); return })
	num("SOLVER_RANDOM_SEEDS", func(v string) (err error) { c.Solver.RandomSeeds, err = strconv.Atoi(v); return })
	num("SOLVER_WORKERS", func(v string) (err error) { c.Solver.Workers, err = strconv.Atoi(v); return })
	num("SOLVER_SEED_TIME_LIMIT", func(v string) (err error) { c.Solver.SeedTimeLimit, err = time.ParseDuration(v); return })
	num("SOLVER_MAX_MOVES", func(v string) (err error) { c.Solver.MaxMoves, err = strconv.Atoi(v); return })
	return firstErr
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "logLevel")
	}
	if c.RateRPS < 0 || c.RateBurst < 0 {
		return errors.New("rate limits must be >= 0")
	}
	if c.Solver.Workers < 0 || c.Solver.MaxMoves < 0 || c.Solver.SeedTimeLimit < 0 {
		return errors.New("solver workers, maxMoves and seedTimeLimit must be >= 0")
	}
	if c.Webhook.MaxAttempts <= 0 {
		return errors.New("webhook maxAttempts must be > 0")
	}
	return nil
}

// Options converts the solver section for opt.SolveCase.
func (s SolverConfig) Options(logger *log.Entry) opt.Options {
	return opt.Options{
		Seed:          s.Seed,
		RandomSeeds:   s.RandomSeeds,
		Workers:       s.Workers,
		SeedTimeLimit: s.SeedTimeLimit,
		MaxMoves:      s.MaxMoves,
		Logger:        logger,
	}
}

// ConfigureLogging applies the level; json selects the structured formatter.
func (c Config) ConfigureLogging(json bool) {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	if json {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
