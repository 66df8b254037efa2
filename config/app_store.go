package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akeren/aimaker-waitlist/pkg/constants"
	"github.com/caarlos0/env/v11"
)

// StoreConfig selects and parameterises the single active waitlist backend.
type StoreConfig struct {
	Backend    string `env:"WAITLIST_BACKEND" envDefault:"database"`
	DataDir    string `env:"WAITLIST_DATA_DIR" envDefault:"data"`
	FileName   string `env:"WAITLIST_FILE_NAME" envDefault:"waitlist.json"`
	RedisKey   string `env:"WAITLIST_REDIS_KEY" envDefault:"aimaker-waitlist"`
	AdminToken string `env:"WAITLIST_ADMIN_TOKEN"`

	MongoURI        string `env:"MONGO_URI"`
	MongoDatabase   string `env:"MONGO_DATABASE" envDefault:"aimaker"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"waitlist"`

	ExposeErrorsRaw string `env:"WAITLIST_EXPOSE_ERRORS"`

	// ExposeErrorDetails is resolved from ExposeErrorsRaw, falling back to APP_ENV.
	ExposeErrorDetails bool `env:"-"`
}

var supportedBackends = map[string]struct{}{
	constants.BackendDatabase: {},
	constants.BackendFile:     {},
	constants.BackendRedis:    {},
	constants.BackendMongo:    {},
	constants.BackendMemory:   {},
}

func LoadStoreConfig() (*StoreConfig, error) {
	cfg := &StoreConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse store env: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if _, ok := supportedBackends[cfg.Backend]; !ok {
		return nil, fmt.Errorf("unsupported WAITLIST_BACKEND %q (allowed: database, file, redis, mongo, memory)", cfg.Backend)
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = constants.DefaultWaitlistDataDir
	}
	if strings.TrimSpace(cfg.FileName) == "" {
		cfg.FileName = constants.DefaultWaitlistFileName
	}
	if strings.TrimSpace(cfg.RedisKey) == "" {
		cfg.RedisKey = constants.DefaultWaitlistRedisKey
	}
	cfg.AdminToken = strings.TrimSpace(cfg.AdminToken)

	if cfg.Backend == constants.BackendMongo && strings.TrimSpace(cfg.MongoURI) == "" {
		return nil, fmt.Errorf("MONGO_URI is required when WAITLIST_BACKEND=%s", constants.BackendMongo)
	}

	cfg.ExposeErrorDetails = resolveExposeErrors(cfg.ExposeErrorsRaw, GetAppEnv())

	return cfg, nil
}

// FilePath is the waitlist file location relative to the working directory.
func (sc *StoreConfig) FilePath() string {
	return filepath.Join(sc.DataDir, sc.FileName)
}

func (sc *StoreConfig) UsesDatabase() bool {
	return sc.Backend == constants.BackendDatabase
}

func (sc *StoreConfig) ListingProtected() bool {
	return sc.AdminToken != ""
}

func resolveExposeErrors(raw, appEnv string) bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return IsDevelopmentEnv(appEnv)
}
