package events

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"estate-api/internal/domain"
)

var eventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "identity_events_total", Help: "Identity events handled, by outcome"},
	[]string{"event", "outcome"},
)

func init() { prometheus.MustRegister(eventsTotal) }

type Reconciler interface {
	CreateUser(ctx context.Context, u *domain.User) error
	UpdateUser(ctx context.Context, id string, f domain.UserFields) error
	DeleteUser(ctx context.Context, id string) error
}

// Ledger deduplicates redelivered events by id.
type Ledger interface {
	Do(ctx context.Context, id string, apply func(context.Context) error) (bool, error)
}

type Dispatcher struct {
	rec    Reconciler
	ledger Ledger
	log    *zap.Logger
}

// NewDispatcher wires the reconciler; ledger may be nil.
func NewDispatcher(rec Reconciler, ledger Ledger, log *zap.Logger) *Dispatcher {
	return &Dispatcher{rec: rec, ledger: ledger, log: log}
}

// Handles reports whether name is one of the user lifecycle events.
func Handles(name string) bool {
	switch name {
	case UserCreated, UserUpdated, UserDeleted:
		return true
	}
	return false
}

func (d *Dispatcher) apply(ctx context.Context, ev Envelope) error {
	switch ev.Name {
	case UserCreated:
		u, err := ToUser(ev.Data)
		if err != nil {
			return err
		}
		return d.rec.CreateUser(ctx, u)
	case UserUpdated:
		id, f, err := ToUserFields(ev.Data)
		if err != nil {
			return err
		}
		return d.rec.UpdateUser(ctx, id, f)
	case UserDeleted:
		id, err := ToUserID(ev.Data)
		if err != nil {
			return err
		}
		return d.rec.DeleteUser(ctx, id)
	}
	return nil
}

// Dispatch applies one event. Events this service does not handle are
// ignored. Errors are returned untouched so the caller can signal the
// delivery layer to retry or give up.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Envelope) error {
	if !Handles(ev.Name) {
		eventsTotal.WithLabelValues("other", "ignored").Inc()
		d.log.Debug("identity event ignored", zap.String("event", ev.Name), zap.String("event_id", ev.ID))
		return nil
	}

	var (
		skipped bool
		err     error
	)
	if d.ledger != nil {
		skipped, err = d.ledger.Do(ctx, ev.ID, func(ctx context.Context) error { return d.apply(ctx, ev) })
	} else {
		err = d.apply(ctx, ev)
	}

	fields := []zap.Field{zap.String("event", ev.Name), zap.String("event_id", ev.ID)}
	switch {
	case err != nil:
		kind := domain.KindOf(err)
		eventsTotal.WithLabelValues(ev.Name, kind.String()).Inc()
		if kind == domain.KindInternal {
			d.log.Error("identity event failed", append(fields, zap.Error(err))...)
		} else {
			d.log.Warn("identity event rejected", append(fields, zap.Error(err))...)
		}
		return err
	case skipped:
		eventsTotal.WithLabelValues(ev.Name, "duplicate_delivery").Inc()
		d.log.Info("identity event already applied", fields...)
	default:
		eventsTotal.WithLabelValues(ev.Name, "ok").Inc()
	}
	return nil
}

// Retryable reports whether redelivering the event could succeed.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, domain.ErrMalformedEvent)
}
