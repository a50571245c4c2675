// Package applicants is the view-model behind the Applicants admin page:
// the Store that mirrors the collaborator's students collection, the pure
// projection (search + fee sort) over it, and the edit-form Draft.
//
// The Store never mutates its collection before the collaborator has
// confirmed a change, so a failed call needs no rollback: the collection
// simply stays at its last-known-good state.
package applicants

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aanand-mishra/applicants/internal/http/middleware"
	"github.com/aanand-mishra/applicants/internal/remote"
	"github.com/aanand-mishra/applicants/internal/types"
)

// ErrClosed is returned when the store has been torn down. A result that
// arrives after Close is discarded, not applied.
var ErrClosed = errors.New("applicants: store closed")

// Remote is the collaborator as seen by the store. *remote.Client
// satisfies it.
type Remote interface {
	List(ctx context.Context) ([]types.Student, error)
	Update(ctx context.Context, student types.Student) (types.Student, error)
	Delete(ctx context.Context, id int64) error
}

// Observer receives remote call outcomes. *metrics.Recorder satisfies it.
type Observer interface {
	ObserveRemote(op string, elapsed time.Duration, err error)
	ObserveDiscarded(op string)
}

// State is everything the store owns. Students is in collaborator order
// and ids are unique; Editing is the single optional editing target.
type State struct {
	Students []types.Student
	Editing  *types.Student
}

// clone returns a deep copy so callers can never alias store internals.
func (s State) clone() State {
	out := State{Students: slices.Clone(s.Students)}
	if out.Students == nil {
		out.Students = []types.Student{}
	}
	if s.Editing != nil {
		e := *s.Editing
		out.Editing = &e
	}
	return out
}

// Store holds the session's copy of the collection and the editing
// target. Remote calls run without holding the lock; each confirmed
// result is then applied as a single state replacement, so readers never
// observe a half-applied reconciliation.
type Store struct {
	remote Remote
	log    *slog.Logger
	obs    Observer

	mu     sync.RWMutex
	state  State
	closed bool
}

// NewStore returns an empty store. log and obs may be nil.
func NewStore(r Remote, log *slog.Logger, obs Observer) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		remote: r,
		log:    log,
		obs:    obs,
		state:  State{Students: []types.Student{}},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// View projects the current collection with query and order.
func (s *Store) View(query string, order SortOrder) []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Project(s.state.Students, query, order)
}

// Editing returns a copy of the editing target, if any.
func (s *Store) Editing() (types.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Editing == nil {
		return types.Student{}, false
	}
	return *s.state.Editing, true
}

// Load replaces the whole collection with the collaborator's list. On
// failure the existing collection is kept and the failure is reported.
func (s *Store) Load(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}

	start := time.Now()
	students, err := s.remote.List(ctx)
	s.observe(remote.OpList, start, err)
	if err != nil {
		s.report(ctx, remote.OpList, 0, err)
		return err
	}

	return s.apply(remote.OpList, func(st State) State {
		return reconcileLoad(st, students)
	})
}

// Remove deletes id at the collaborator and, once confirmed, drops it
// from the collection.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if s.isClosed() {
		return ErrClosed
	}

	start := time.Now()
	err := s.remote.Delete(ctx, id)
	s.observe(remote.OpDelete, start, err)
	if err != nil {
		s.report(ctx, remote.OpDelete, id, err)
		return err
	}

	return s.apply(remote.OpDelete, func(st State) State {
		return reconcileRemove(st, id)
	})
}

// BeginEdit makes a copy of record the editing target, replacing any
// previous target, and returns a Draft initialised from it.
func (s *Store) BeginEdit(record types.Student) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := record
	s.state.Editing = &target
	s.log.Debug("edit started", slog.Int64("id", record.ID))
	return NewDraft(record)
}

// CancelEdit clears the editing target. Unsaved draft changes are lost.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Editing = nil
}

// CommitEdit sends updated as a full replacement. On success the
// collaborator's canonical record replaces the entry with the same id and
// the editing target is cleared. On failure nothing changes, so the user
// stays in edit mode.
func (s *Store) CommitEdit(ctx context.Context, updated types.Student) error {
	if s.isClosed() {
		return ErrClosed
	}

	start := time.Now()
	canonical, err := s.remote.Update(ctx, updated)
	s.observe(remote.OpUpdate, start, err)
	if err != nil {
		s.report(ctx, remote.OpUpdate, updated.ID, err)
		return err
	}

	return s.apply(remote.OpUpdate, func(st State) State {
		return reconcileCommit(st, canonical)
	})
}

// Close tears the store down. In-flight calls may still complete, but
// their results are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// apply swaps in next(state) under the write lock, unless the store was
// closed while the call was in flight.
func (s *Store) apply(op string, next func(State) State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.log.Warn("discarding result for closed store", slog.String("op", op))
		if s.obs != nil {
			s.obs.ObserveDiscarded(op)
		}
		return ErrClosed
	}

	s.state = next(s.state)
	return nil
}

func (s *Store) observe(op string, start time.Time, err error) {
	if s.obs != nil {
		s.obs.ObserveRemote(op, time.Since(start), err)
	}
}

func (s *Store) report(ctx context.Context, op string, id int64, err error) {
	attrs := []any{
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("op", op),
		slog.String("kind", string(remote.KindOf(err))),
		slog.String("error", err.Error()),
	}
	if id != 0 {
		attrs = append(attrs, slog.Int64("id", id))
	}
	s.log.Error("remote call failed", attrs...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Reconciliation: pure functions from (prior state, confirmed result) to
// next state. They never modify prior; each returns fresh slices.
// ─────────────────────────────────────────────────────────────────────────────

func reconcileLoad(prior State, students []types.Student) State {
	return State{
		Students: slices.Clone(students),
		Editing:  prior.Editing,
	}
}

func reconcileRemove(prior State, id int64) State {
	kept := make([]types.Student, 0, len(prior.Students))
	for _, st := range prior.Students {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	return State{Students: kept, Editing: prior.Editing}
}

func reconcileCommit(prior State, canonical types.Student) State {
	next := make([]types.Student, len(prior.Students))
	for i, st := range prior.Students {
		if st.ID == canonical.ID {
			next[i] = canonical
		} else {
			next[i] = st
		}
	}
	return State{Students: next}
}
