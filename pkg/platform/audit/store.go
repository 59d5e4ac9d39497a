package audit

import (
	"context"
	"errors"
)

// Appender is a write-only audit sink such as a message broker.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// Store persists audit events and can list them back.
type Store interface {
	Appender
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Tee appends every event to the primary store and then to each sink. Reads
// are served by the primary store.
func Tee(primary Store, sinks ...Appender) Store {
	if len(sinks) == 0 {
		return primary
	}
	return &tee{Store: primary, sinks: sinks}
}

type tee struct {
	Store
	sinks []Appender
}

func (t *tee) Append(ctx context.Context, event Event) error {
	if err := t.Store.Append(ctx, event); err != nil {
		return err
	}
	var errs []error
	for _, sink := range t.sinks {
		if err := sink.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
