// internal/sink/amqp.go
package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	exchangeTypeDirect = "direct"
	durable            = true
	deleteWhenUnused   = false
	internal           = false
	noWait             = false

	brokerConnectLimit = time.Minute
)

// AMQPConfig is minimal broker config.
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// AMQPSink publishes each sample as JSON to a direct exchange.
// Delivery is fire-and-forget: publish errors are logged, never handed
// back to the polling loop.
type AMQPSink struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	log        *logrus.Entry
}

// NewAMQP connects to the broker with exponential backoff and declares
// the exchange. The broker is an auxiliary sink, so unlike the bus
// transport a slow bring-up is tolerated up to a limit.
func NewAMQP(cfg AMQPConfig, log *logrus.Entry) (*AMQPSink, error) {
	s := &AMQPSink{
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		log:        log,
	}

	connect := func() error {
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			return err
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return err
		}
		s.conn = conn
		s.channel = ch
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = brokerConnectLimit

	if err := backoff.Retry(connect, bo); err != nil {
		return nil, errors.Wrap(err, "amqp sink: connect")
	}

	err := s.channel.ExchangeDeclare(
		s.exchange,
		exchangeTypeDirect,
		durable,
		deleteWhenUnused,
		internal,
		noWait,
		nil, // arguments
	)
	if err != nil {
		s.Close()
		return nil, errors.Wrap(err, "amqp sink: declare exchange")
	}

	return s, nil
}

func (s *AMQPSink) Record(smp Sample) {
	body, err := json.Marshal(smp)
	if err != nil {
		s.log.WithError(err).Error("amqp sink: encode sample")
		return
	}

	err = s.channel.PublishWithContext(
		context.Background(),
		s.exchange,
		s.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    smp.At,
			Body:         body,
		},
	)
	if err != nil {
		s.log.WithError(err).Error("amqp sink: publish sample")
	}
}

// Close releases the channel and connection.
func (s *AMQPSink) Close() {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil && !s.conn.IsClosed() {
		s.conn.Close()
	}
}
