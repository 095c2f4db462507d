/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/sourceformat/data"
)

type RequiredAcks int

const (
	// NoResponse doesn't send any response, the TCP ACK is all you get.
	NoResponse RequiredAcks = 0

	// WaitForLeader waits for only the local commit to succeed before responding.
	WaitForLeader RequiredAcks = 1

	// WaitForAll waits for all in-sync replicas to commit before responding.
	WaitForAll RequiredAcks = -1
)

func (ack RequiredAcks) String() string {
	a := `NoResponse`

	if ack == WaitForLeader {
		a = `WaitForLeader`
	}

	if ack == WaitForAll {
		a = `WaitForAll`
	}

	return a
}

// Producer writes records to kafka.
type Producer interface {
	Produce(ctx context.Context, message *data.Record) (partition int32, offset int64, err error)
	Close() error
}

type ProducerConfig struct {
	Id string
	*Config
	RequiredAcks    RequiredAcks
	MetricsReporter metrics.Reporter
}

func NewProducerConfig() *ProducerConfig {
	c := &ProducerConfig{Config: NewConfig(), RequiredAcks: WaitForAll}
	c.Producer.Return.Errors = true
	c.Producer.Return.Successes = true
	c.Producer.Compression = sarama.CompressionSnappy
	c.Producer.Partitioner = sarama.NewHashPartitioner
	c.MetricsReporter = metrics.NoopReporter()

	return c
}

func (c *ProducerConfig) validate() error {
	c.Producer.RequiredAcks = sarama.RequiredAcks(c.RequiredAcks)

	if c.MetricsReporter == nil {
		c.MetricsReporter = metrics.NoopReporter()
	}

	return c.Config.validate()
}

type saramaProducer struct {
	id             string
	saramaProducer sarama.SyncProducer
	logger         log.Logger
	produceLatency metrics.Observer
}

func NewProducer(config *ProducerConfig) (Producer, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	logger := config.Logger.NewLog(log.Prefixed(`kafka-producer`))

	logger.Info(`producer [` + config.Id + `] initiating...`)
	prd, err := sarama.NewSyncProducer(config.BootstrapServers, config.Config.Config)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`[%s] init failed`, config.Id))
	}

	defer logger.Info(`producer [` + config.Id + `] initiated`)

	return &saramaProducer{
		id:             config.Id,
		saramaProducer: prd,
		logger:         logger,
		produceLatency: config.MetricsReporter.Observer(metrics.MetricConf{
			Path:        `source_sink_produced_latency_microseconds`,
			Labels:      []string{`topic`, `partition`},
			ConstLabels: map[string]string{`producer_id`: config.Id},
		}),
	}, nil
}

func (p *saramaProducer) Close() error {
	defer p.logger.Info(fmt.Sprintf(`producer [%s] closed`, p.id))
	return p.saramaProducer.Close()
}

func (p *saramaProducer) Produce(ctx context.Context, message *data.Record) (partition int32, offset int64, err error) {
	t := time.Now()

	m := &sarama.ProducerMessage{
		Topic:     message.Topic,
		Key:       sarama.ByteEncoder(message.Key),
		Value:     sarama.ByteEncoder(message.Value),
		Timestamp: t,
	}

	for _, header := range message.Headers {
		m.Headers = append(m.Headers, *header)
	}

	if !message.Timestamp.IsZero() {
		m.Timestamp = message.Timestamp
	}

	pr, o, err := p.saramaProducer.SendMessage(m)
	if err != nil {
		return 0, 0, errors.WithPrevious(err, `cannot send message`)
	}

	p.produceLatency.Observe(float64(time.Since(t).Nanoseconds()/1e3), map[string]string{
		`topic`:     message.Topic,
		`partition`: fmt.Sprint(pr),
	})

	p.logger.TraceContext(ctx, fmt.Sprintf("Delivered message to topic %s [%d] at offset %d",
		message.Topic, pr, o))

	return pr, o, nil
}
