package socketcan

import "github.com/openheavy/j1939tel/internal/pool"

type Config struct {
	PoolConfig *pool.Config

	// Interface is the SocketCAN network interface to read from.
	Interface string
}

func NewDefaultConfig() *Config {
	return &Config{
		PoolConfig: pool.DefaultConfig(),

		Interface: "can0",
	}
}
