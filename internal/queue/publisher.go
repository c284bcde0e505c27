package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/openday-seat-reservation/internal/logging"
)

// DialFunc opens a broker connection.
type DialFunc func(url string) (*amqp.Connection, error)

// Publisher sends ReservationEvents to a durable queue. Each call opens
// its own connection so a broker outage never leaves a half-broken
// channel behind; errors are logged and returned so the caller can
// choose to ignore them.
type Publisher struct {
    URL   string
    Queue string
    dial  DialFunc
}

// NewPublisher returns a Publisher for the given broker URL and queue.
func NewPublisher(url, queueName string) *Publisher {
    return &Publisher{URL: url, Queue: queueName, dial: amqp.Dial}
}

// Publish marshals ev and publishes it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        logging.Error().Err(err).Msg("rabbitmq: marshal event failed")
        return err
    }

    conn, err := p.dial(p.URL)
    if err != nil {
        logging.Error().Err(err).Msg("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        logging.Error().Err(err).Msg("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        p.Queue, // name
        true,    // durable
        false,   // autoDelete
        false,   // exclusive
        false,   // noWait
        nil,     // args
    ); err != nil {
        logging.Error().Err(err).Str("queue", p.Queue).Msg("rabbitmq: queue declare failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",      // default exchange
        p.Queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        logging.Error().Err(err).Str("queue", p.Queue).Msg("rabbitmq: publish failed")
        return err
    }
    return nil
}
