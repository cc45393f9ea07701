// Package session acquires the workspace a workflow run writes into and
// records what the run produced.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/brainstorm/internal/log"
	"github.com/zjrosen/brainstorm/internal/sessions/domain"
)

// Handle identifies an acquired session. It is never mutated after Resolve.
type Handle struct {
	ID  string
	Dir string
}

// Manager hands out session handles.
type Manager interface {
	// ListActive returns every session that can accept a run.
	ListActive(ctx context.Context) ([]Handle, error)
	// Resolve returns the preferred session when set, otherwise the single
	// active session, otherwise a newly created one. More than one active
	// session without a preference yields *domain.AmbiguousSessionError.
	Resolve(ctx context.Context, preferred, topic string) (Handle, error)
}

// Recorder persists the outcome of a finished run.
type Recorder interface {
	RecordRun(ctx context.Context, run *domain.RunRecord) error
}

// Store is the SQLite-backed Manager and Recorder.
type Store struct {
	sessions  domain.SessionRepository
	runs      domain.RunRepository
	outputDir string
	now       func() time.Time
	newID     func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates a Store that places session directories under outputDir.
func NewStore(sessions domain.SessionRepository, runs domain.RunRepository, outputDir string, opts ...Option) *Store {
	s := &Store{
		sessions:  sessions,
		runs:      runs,
		outputDir: outputDir,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ Manager  = (*Store)(nil)
	_ Recorder = (*Store)(nil)
)

func toHandle(s *domain.Session) Handle {
	return Handle{ID: s.GUID(), Dir: s.WorkDir()}
}

// ListActive implements Manager.
func (s *Store) ListActive(ctx context.Context) ([]Handle, error) {
	list, err := s.sessions.ListWithFilter(ctx, domain.ListFilter{State: domain.SessionActive})
	if err != nil {
		return nil, err
	}
	handles := make([]Handle, 0, len(list))
	for _, sess := range list {
		handles = append(handles, toHandle(sess))
	}
	return handles, nil
}

// Resolve implements Manager.
func (s *Store) Resolve(ctx context.Context, preferred, topic string) (Handle, error) {
	if preferred != "" {
		sess, err := s.sessions.FindByGUID(ctx, preferred)
		if err != nil {
			return Handle{}, err
		}
		if !sess.IsActive() {
			return Handle{}, &domain.InvalidStateTransitionError{
				GUID: sess.GUID(), From: sess.State(), To: domain.SessionActive,
			}
		}
		return s.ensureDir(toHandle(sess))
	}

	active, err := s.ListActive(ctx)
	if err != nil {
		return Handle{}, err
	}
	switch len(active) {
	case 0:
		return s.create(ctx, topic)
	case 1:
		log.Debug(log.CatOrch, "reusing active session", "session", active[0].ID)
		return s.ensureDir(active[0])
	default:
		ids := make([]string, len(active))
		for i, h := range active {
			ids[i] = h.ID
		}
		return Handle{}, &domain.AmbiguousSessionError{Candidates: ids}
	}
}

func (s *Store) create(ctx context.Context, topic string) (Handle, error) {
	id := s.newID()
	dir, err := filepath.Abs(filepath.Join(s.outputDir, id))
	if err != nil {
		return Handle{}, fmt.Errorf("resolving session directory: %w", err)
	}

	sess := domain.NewSession(id, topic, dir, s.now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Handle{}, err
	}
	log.Info(log.CatOrch, "created session", "session", id, "dir", dir)
	return s.ensureDir(toHandle(sess))
}

func (s *Store) ensureDir(h Handle) (Handle, error) {
	if err := os.MkdirAll(h.Dir, 0750); err != nil {
		return Handle{}, fmt.Errorf("creating session directory: %w", err)
	}
	return h, nil
}

// RecordRun implements Recorder. A completed run also completes its session.
func (s *Store) RecordRun(ctx context.Context, run *domain.RunRecord) error {
	if err := s.runs.SaveRun(ctx, run); err != nil {
		return err
	}
	if run.Status != StatusCompleted {
		return nil
	}

	sess, err := s.sessions.FindByGUID(ctx, run.SessionGUID)
	if err != nil {
		return err
	}
	if err := sess.Complete(s.now()); err != nil {
		var transition *domain.InvalidStateTransitionError
		if errors.As(err, &transition) {
			return nil
		}
		return err
	}
	return s.sessions.Save(ctx, sess)
}

// List returns sessions for display.
func (s *Store) List(ctx context.Context, includeArchived bool) ([]*domain.Session, error) {
	return s.sessions.ListWithFilter(ctx, domain.ListFilter{IncludeArchived: includeArchived})
}

// Get returns one session.
func (s *Store) Get(ctx context.Context, guid string) (*domain.Session, error) {
	return s.sessions.FindByGUID(ctx, guid)
}

// LatestRun returns the most recent run of a session.
func (s *Store) LatestRun(ctx context.Context, guid string) (*domain.RunRecord, error) {
	return s.runs.LatestRun(ctx, guid)
}

// Archive hides a session from default listings and from Resolve.
func (s *Store) Archive(ctx context.Context, guid string) error {
	sess, err := s.sessions.FindByGUID(ctx, guid)
	if err != nil {
		return err
	}
	if err := sess.Archive(s.now()); err != nil {
		return err
	}
	return s.sessions.Save(ctx, sess)
}
