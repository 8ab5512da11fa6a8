package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"estate-api/internal/domain"
)

type SubscriberOpts struct {
	URL     string
	Subject string
	Queue   string
	Stream  string
	Timeout time.Duration
}

// Subscriber consumes identity events from a JetStream queue group.
type Subscriber struct {
	nc  *nats.Conn
	sub *nats.Subscription
	d   *Dispatcher
	log *zap.Logger
	ttl time.Duration
}

func NewSubscriber(o SubscriberOpts, d *Dispatcher, log *zap.Logger) (*Subscriber, error) {
	nc, err := nats.Connect(o.URL, nats.Name("estate-api"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	s := &Subscriber{nc: nc, d: d, log: log, ttl: o.Timeout}

	opts := []nats.SubOpt{nats.ManualAck(), nats.AckExplicit(), nats.DeliverAll()}
	if o.Stream != "" {
		opts = append(opts, nats.BindStream(o.Stream))
	}
	s.sub, err = js.QueueSubscribe(o.Subject, o.Queue, s.onMsg, opts...)
	if err != nil {
		nc.Close()
		return nil, err
	}
	log.Info("identity event subscriber listening", zap.String("subject", o.Subject), zap.String("queue", o.Queue))
	return s, nil
}

type acker interface {
	Ack(opts ...nats.AckOpt) error
	Nak(opts ...nats.AckOpt) error
	Term(opts ...nats.AckOpt) error
}

func (s *Subscriber) onMsg(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), s.ttl)
	defer cancel()
	s.settle(msg, s.handle(ctx, msg.Subject, msg.Data))
}

func (s *Subscriber) handle(ctx context.Context, subject string, data []byte) error {
	var ev Envelope
	if err := json.Unmarshal(data, &ev); err != nil {
		return &domain.Error{Kind: domain.KindMalformedEvent, Msg: "event envelope is not JSON", Err: err}
	}
	if ev.Name == "" {
		ev.Name = NameFromSubject(subject)
	}
	return s.d.Dispatch(ctx, ev)
}

// settle acks success, terminates events that can never apply and asks for
// redelivery of everything else.
func (s *Subscriber) settle(m acker, err error) {
	var aerr error
	switch {
	case err == nil:
		aerr = m.Ack()
	case !Retryable(err):
		aerr = m.Term()
	default:
		aerr = m.Nak()
	}
	if aerr != nil {
		s.log.Warn("event ack failed", zap.Error(aerr))
	}
}

func (s *Subscriber) Close() error {
	if s.sub != nil {
		_ = s.sub.Drain()
	}
	return s.nc.Drain()
}
