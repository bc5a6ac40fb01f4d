package cannelloni

import "github.com/openheavy/j1939tel/internal/pool"

type Config struct {
	PoolConfig *pool.Config
}

func NewDefaultConfig() *Config {
	return &Config{
		PoolConfig: pool.DefaultConfig(),
	}
}
