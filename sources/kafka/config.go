package kafka

import (
	"github.com/Shopify/sarama"
	saramaMetrics "github.com/rcrowley/go-metrics"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
)

type Config struct {
	BootstrapServers []string // kafka Brokers
	*sarama.Config
	Logger log.Logger
}

func NewConfig() *Config {
	c := new(Config)
	c.Config = sarama.NewConfig()
	c.Version = sarama.V2_4_0_0
	c.Consumer.Return.Errors = true
	c.Logger = log.NewNoopLogger()

	// reading sessions are short lived, sarama's own registry is of no use here
	saramaMetrics.UseNilMetrics = true

	return c
}

func (c *Config) validate() error {
	if len(c.BootstrapServers) < 1 {
		return errors.New(`[BootstrapServers] cannot be empty`)
	}

	if c.Logger == nil {
		c.Logger = log.NewNoopLogger()
	}

	if err := c.Config.Validate(); err != nil {
		return errors.WithPrevious(err, `invalid sarama config`)
	}

	return nil
}
