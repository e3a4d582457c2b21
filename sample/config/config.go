// Package config loads the sample app configuration from config.yaml with
// environment-variable overrides.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Bus      Bus      `yaml:"bus"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"employee-rewards"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port            string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"employee_rewards"`
}

// DSN builds the pgx connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.DBName)
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Bus struct {
	HistoryLimit    int `yaml:"history_limit" env:"BUS_HISTORY_LIMIT" env-default:"100"`
	ShutdownTimeout int `yaml:"shutdown_timeout_seconds" env:"BUS_SHUTDOWN_TIMEOUT" env-default:"5"`
}

// New reads config.yaml when present and falls back to environment
// variables; env vars always win over the file.
func New() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		cleanenv.ReadEnv(cfg)
	}
	return cfg, nil
}
