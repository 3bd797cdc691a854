package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig     `toml:"app"`
	LLM     LLMConfig     `toml:"llm"`
	Storage StorageConfig `toml:"storage"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type LLMConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type StorageConfig struct {
	Driver     string `toml:"driver"` // sqlite | mysql
	SQLitePath string `toml:"sqlite_path"`
	UploadDir  string `toml:"upload_dir"`

	MySQLHost     string `toml:"mysql_host"`
	MySQLPort     int    `toml:"mysql_port"`
	MySQLUser     string `toml:"mysql_user"`
	MySQLPassword string `toml:"mysql_password"`
	MySQLDB       string `toml:"mysql_db"`
	MySQLParams   string `toml:"mysql_params"`
}

func Load() (*Config, error) {
	// .env is optional; real env vars still win below.
	_ = godotenv.Load()

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)

	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Storage.MySQLUser,
		c.Storage.MySQLPassword,
		c.Storage.MySQLHost,
		c.Storage.MySQLPort,
		c.Storage.MySQLDB,
		c.Storage.MySQLParams,
	)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "mentorchat",
			Env:     "dev",
			Host:    "127.0.0.1",
			Port:    5000,
			GinMode: "debug",
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			APIKey:  "",
			Model:   "gpt-5-mini",
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SQLitePath: "chatbot.db",
			UploadDir:  "uploads",

			MySQLHost:   "127.0.0.1",
			MySQLPort:   3306,
			MySQLUser:   "root",
			MySQLDB:     "mentorchat",
			MySQLParams: "parseTime=true&loc=Local&charset=utf8mb4",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", cfg.LLM.APIKey))
	cfg.LLM.Model = getEnv("LLM_MODEL", getEnv("OPENAI_MODEL", cfg.LLM.Model))

	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.SQLitePath = getEnv("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.UploadDir = getEnv("UPLOAD_DIR", cfg.Storage.UploadDir)

	cfg.Storage.MySQLHost = getEnv("MYSQL_HOST", cfg.Storage.MySQLHost)
	cfg.Storage.MySQLPort = getEnvAsInt("MYSQL_PORT", cfg.Storage.MySQLPort)
	cfg.Storage.MySQLUser = getEnv("MYSQL_USER", cfg.Storage.MySQLUser)
	cfg.Storage.MySQLPassword = getEnv("MYSQL_PASSWORD", cfg.Storage.MySQLPassword)
	cfg.Storage.MySQLDB = getEnv("MYSQL_DB", cfg.Storage.MySQLDB)
	cfg.Storage.MySQLParams = getEnv("MYSQL_PARAMS", cfg.Storage.MySQLParams)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
