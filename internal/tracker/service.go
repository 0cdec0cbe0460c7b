// Package tracker is the single entry point the CLI and TUI use to read and
// change trackers, categories and completions.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/tracker/internal/ledger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/utils"
)

// Service serializes every operation behind one mutex, so a single Service
// is the only writer for its store within the process.
type Service struct {
	mu     sync.Mutex
	store  storage.Provider
	ledger *ledger.Ledger
	clock  utils.Clock
	ids    utils.IDGenerator
	loc    *time.Location

	subsMu sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(c utils.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(g utils.IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithLocation sets the timezone that decides calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService wires a service around an initialized or loaded store.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: utils.RealClock{},
		ids:   utils.UUIDGenerator{},
		loc:   time.Local,
		subs:  map[int]chan Event{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = ledger.New(store, s.clock, s.loc)
	return s
}

// Store returns the underlying provider.
func (s *Service) Store() storage.Provider {
	return s.store
}

// Location returns the timezone used for calendar days.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Today returns the start of the current day.
func (s *Service) Today() time.Time {
	return s.ledger.Today()
}

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// Settings returns the stored settings with defaults filled in.
func (s *Service) Settings(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

// SaveSettings persists settings.
func (s *Service) SaveSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return err
	}
	s.publish(Event{Kind: EventSettingsChanged})
	return nil
}
