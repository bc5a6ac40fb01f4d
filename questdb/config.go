package questdb

import "github.com/openheavy/j1939tel/internal/pool"

type Config struct {
	PoolConfig *pool.Config

	Address string

	// Table is the QuestDB table the decoded SPN rows are written to.
	Table string
}

func NewDefaultConfig() *Config {
	return &Config{
		PoolConfig: pool.DefaultConfig(),

		Address: "localhost:9000",
		Table:   "j1939_spns",
	}
}
