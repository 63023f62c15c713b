package config

import (
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

func Load() App {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("config load failed", "err", err)
		panic(err)
	}
	return cfg
}
