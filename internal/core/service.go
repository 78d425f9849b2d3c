package core

import (
	"errors"
	"time"

	"doccontrol/pkg/types"

	"github.com/sirupsen/logrus"
)

// Service is the document-control register: identity, projects, documents,
// revisions, the event log and transmittals.
type Service struct {
	store  Store
	blobs  Blobs
	logger *logrus.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces the source of timestamps written to revisions, events
// and transmittals.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, blobs Blobs, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		blobs:  blobs,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// absent turns a not-found error into a nil result for lookup style reads.
func absent[T any](v *T, err error) (*T, error) {
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
