package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Storage   Storage
	Redis     Redis
	SQLite    SQLite
	Backup    Backup
	Dividends Dividends
}

type Storage struct {
	Driver   string `env:"STORAGE_DRIVER" envDefault:"file"`
	FilePath string `env:"STORAGE_FILE_PATH" envDefault:"invest_dash.json"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Key      string `env:"REDIS_STORE_KEY" envDefault:"invest_dash_data"`
}

type SQLite struct {
	Path string `env:"SQLITE_PATH" envDefault:"invest_dash.db"`
}

type Backup struct {
	Dir      string        `env:"BACKUP_DIR" envDefault:"backups"`
	Interval time.Duration `env:"BACKUP_INTERVAL" envDefault:"1h"`
}

type Dividends struct {
	// DedupOnImport skips statement dividends that already exist with the
	// same symbol, pay date and amount instead of duplicating them.
	DedupOnImport bool `env:"DEDUP_DIVIDENDS" envDefault:"false"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
