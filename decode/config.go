package decode

import (
	"github.com/openheavy/j1939tel/internal/pool"
	"github.com/openheavy/j1939tel/j1939"
)

type Config struct {
	PoolConfig *pool.Config

	// Database holds the J1939 definitions used for decoding.
	Database j1939.Database
}

func NewDefaultConfig() *Config {
	return &Config{
		PoolConfig: pool.DefaultConfig(),
	}
}
