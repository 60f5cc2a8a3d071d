package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/guard"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

// SessionState is the resolved {user, isLoading} pair the route guard evaluates
type SessionState = guard.State

// ProfileLoader reads the profile for a signed-in identity
type ProfileLoader func(ctx context.Context, uid string) (*models.User, error)

// SessionContext tracks one client's session. It starts loading and resolves on the first
// auth-state change. A newer change cancels the profile read started by an older one, and
// results from superseded reads are discarded.
type SessionContext struct {
	load   ProfileLoader
	logger *slog.Logger

	mu          sync.Mutex
	state       SessionState
	generation  uint64
	cancelLoad  context.CancelFunc
	subscribers map[uint64]chan SessionState
	nextSubID   uint64
	closed      bool
	done        chan struct{}
}

func NewSessionContext(load ProfileLoader, logger *slog.Logger) *SessionContext {
	return &SessionContext{
		load:        load,
		logger:      logger,
		state:       SessionState{IsLoading: true},
		subscribers: make(map[uint64]chan SessionState),
		done:        make(chan struct{}),
	}
}

// State returns the current snapshot
func (s *SessionContext) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the context has been torn down
func (s *SessionContext) Done() <-chan struct{} {
	return s.done
}

// Run consumes auth-state changes until ctx ends or changes is closed, then tears the context down.
func (s *SessionContext) Run(ctx context.Context, changes <-chan events.AuthStateChange) {
	defer s.teardown()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			s.apply(ctx, change)
		}
	}
}

func (s *SessionContext) apply(ctx context.Context, change events.AuthStateChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.generation++
	gen := s.generation
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}

	if !change.SignedIn {
		s.setState(SessionState{})
		return
	}

	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel

	go func() {
		defer cancel()

		user, err := s.load(loadCtx, change.UserID)

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.closed || gen != s.generation {
			// Superseded by a newer change
			return
		}
		s.cancelLoad = nil

		if err != nil {
			s.logger.Warn("Failed to load session profile", "user_id", change.UserID, "error", err)
			user = nil
		}
		s.setState(SessionState{User: user})
	}()
}

// setState stores and broadcasts a snapshot. Callers hold s.mu.
func (s *SessionContext) setState(state SessionState) {
	s.state = state
	for _, ch := range s.subscribers {
		offerLatest(ch, state)
	}
}

// Subscribe returns a stream that starts with the current snapshot and then carries every
// change. Slow readers only see the latest snapshot. unsubscribe may be called more than once.
func (s *SessionContext) Subscribe() (<-chan SessionState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan SessionState, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	ch <- s.state

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
	return ch, unsubscribe
}

func (s *SessionContext) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	close(s.done)
}

func offerLatest(ch chan SessionState, state SessionState) {
	select {
	case ch <- state:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}

// ===== SESSION SERVICE =====

type sessionService struct {
	repo      repositories.Repository
	authState AuthStateBus
	logger    *slog.Logger
}

func NewSessionService(repo repositories.Repository, authState AuthStateBus, logger *slog.Logger) SessionService {
	return &sessionService{repo: repo, authState: authState, logger: logger}
}

func (s *sessionService) Open(ctx context.Context, uid string) (*SessionContext, error) {
	changes, err := s.authState.Subscribe(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to auth state: %w", err)
	}

	// The caller already holds a valid session, which counts as the first signed-in change
	merged := make(chan events.AuthStateChange)
	go func() {
		defer close(merged)

		select {
		case merged <- events.AuthStateChange{UserID: uid, SignedIn: true}:
		case <-ctx.Done():
			return
		}

		for change := range changes {
			select {
			case merged <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	sc := NewSessionContext(s.loadProfile, s.logger)
	go sc.Run(ctx, merged)

	return sc, nil
}

func (s *sessionService) loadProfile(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, uid)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, &ProfileNotFoundError{UserID: uid}
		}
		return nil, err
	}
	return user, nil
}
