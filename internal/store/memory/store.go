package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"doccontrol/internal/core"
	"doccontrol/pkg/types"
)

var errReadOnly = errors.New("write attempted in a read-only view")

// Store implements core.Store in memory. Atomic runs against a copy of the
// current state and swaps it in only when fn succeeds, so a failed unit of
// work leaves nothing behind. Data is lost on restart.
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ core.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) View(ctx context.Context, fn func(r core.Repository) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&repo{st: s.st, readOnly: true})
}

func (s *Store) Atomic(ctx context.Context, fn func(r core.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	if err := fn(&repo{st: next}); err != nil {
		return err
	}

	s.st = next
	return nil
}

// state holds entities by value so that cloning the maps is enough to
// isolate a unit of work.
type state struct {
	seq int64

	organizations map[string]types.Organization
	users         map[string]types.User
	projects      map[string]types.Project
	documents     map[string]types.Document
	revisions     map[string]types.Revision
	events        map[string]types.Event
	transmittals  map[string]types.Transmittal
	links         []types.TransmittalRevision
}

func newState() *state {
	return &state{
		organizations: make(map[string]types.Organization),
		users:         make(map[string]types.User),
		projects:      make(map[string]types.Project),
		documents:     make(map[string]types.Document),
		revisions:     make(map[string]types.Revision),
		events:        make(map[string]types.Event),
		transmittals:  make(map[string]types.Transmittal),
	}
}

func (st *state) clone() *state {
	return &state{
		seq:           st.seq,
		organizations: maps.Clone(st.organizations),
		users:         maps.Clone(st.users),
		projects:      maps.Clone(st.projects),
		documents:     maps.Clone(st.documents),
		revisions:     maps.Clone(st.revisions),
		events:        maps.Clone(st.events),
		transmittals:  maps.Clone(st.transmittals),
		links:         slices.Clone(st.links),
	}
}

func (st *state) nextSeq() int64 {
	st.seq++
	return st.seq
}

type repo struct {
	st       *state
	readOnly bool
}

var _ core.Repository = (*repo)(nil)

func (r *repo) writable() error {
	if r.readOnly {
		return errReadOnly
	}
	return nil
}
