package kafka

import (
	"time"

	"github.com/openheavy/j1939tel/internal/pool"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	PoolConfig *pool.Config

	Brokers []string

	// Topic the decoded messages are published to.
	Topic string

	// The balancer used to distribute messages across partitions.
	//
	// The default is to use a round-robin distribution.
	Balancer kafka.Balancer

	// Limit on how many attempts will be made to deliver a message.
	//
	// The default is to try at most 10 times.
	MaxAttempts int

	// Limit on how many messages will be buffered before being sent to a
	// partition.
	//
	// The default is to use a target batch size of 100 messages.
	BatchSize int

	// Time limit on how often incomplete message batches will be flushed to
	// kafka.
	//
	// The default is to flush at least every second.
	BatchTimeout time.Duration

	// Timeout for write operation performed by the Writer.
	//
	// Defaults to 10 seconds.
	WriteTimeout time.Duration

	// Number of acknowledges from partition replicas required before receiving
	// a response to a produce request.
	//
	// Defaults to RequireNone.
	RequiredAcks kafka.RequiredAcks

	// Setting this flag to true causes the WriteMessages method to never block.
	// It also means that errors are ignored since the caller will not receive
	// the returned value.
	//
	// Defaults to true.
	Async bool

	// Compression set the compression codec to be used to compress messages.
	Compression kafka.Compression

	// AllowAutoTopicCreation notifies writer to create topic if missing.
	AllowAutoTopicCreation bool
}

func NewDefaultConfig() *Config {
	return &Config{
		PoolConfig: pool.DefaultConfig(),

		Brokers:                []string{"localhost:9092"},
		Topic:                  "j1939-decoded",
		Balancer:               &kafka.RoundRobin{},
		MaxAttempts:            10,
		BatchSize:              100,
		BatchTimeout:           time.Second,
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireNone,
		Async:                  true,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
}
