package sessionsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/repo/session"
)

const (
	profilePath = "/api/auth/profile"

	// sweepThreshold is the number of tracked sessions above which stale
	// entries are dropped when a new session is added.
	sweepThreshold = 4096
)

type sessionState struct {
	user      *domain.User
	view      domain.View
	loading   bool
	err       string
	fetchedAt time.Time
	touchedAt time.Time
}

// StoreSessionService implements SessionService with tokens in a session
// repository and profiles cached in memory.
type StoreSessionService struct {
	repo  session.Repository
	api   apiclient.Client
	cfg   SessionConfig
	log   logging.Logger
	now   func() time.Time
	group singleflight.Group

	mu          sync.Mutex
	states      map[string]*sessionState
	subscribers map[int]func(context.Context, Event)
	nextSubID   int
}

var _ SessionService = (*StoreSessionService)(nil)

// NewStoreSessionService creates a new StoreSessionService.
func NewStoreSessionService(
	repo session.Repository,
	api apiclient.Client,
	cfg SessionConfig,
) *StoreSessionService {
	return &StoreSessionService{
		repo:        repo,
		api:         api,
		cfg:         cfg,
		log:         logging.GetLogger("svc.sessionsvc.store_session_service"),
		now:         time.Now,
		states:      make(map[string]*sessionState),
		subscribers: make(map[int]func(context.Context, Event)),
	}
}

// Establish implements SessionService.Establish.
func (s *StoreSessionService) Establish(ctx context.Context, sessionID, token string) error {
	if err := s.repo.SaveToken(ctx, sessionID, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	s.mu.Lock()
	delete(s.states, sessionID)
	s.mu.Unlock()

	s.group.Forget(sessionID)

	return nil
}

// Token implements SessionService.Token.
func (s *StoreSessionService) Token(ctx context.Context, sessionID string) (string, error) {
	token, ok, err := s.repo.GetToken(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}

	if !ok {
		return "", domain.ErrNoToken
	}

	return token, nil
}

// FetchProfile implements SessionService.FetchProfile.
func (s *StoreSessionService) FetchProfile(ctx context.Context, sessionID string) (user domain.User, err error) {
	log := s.log.With(logging.Group("session", "id", sessionID))

	defer func() {
		switch {
		case errors.Is(err, domain.ErrNoToken):
			log.DebugContext(ctx, "fetch profile skipped", "error", err)
		case err != nil:
			log.ErrorContext(ctx, "fetch profile failed", "error", err)
		default:
			log.DebugContext(ctx, "profile fetched", "role", user.Role)
		}
	}()

	token, err := s.Token(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNoToken) {
			s.fail(ctx, sessionID, err, MsgNoToken)
		}

		return domain.User{}, err
	}

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own request goes away.
	resultCh := s.group.DoChan(sessionID, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), sessionID, token)
	})

	select {
	case <-ctx.Done():
		return domain.User{}, fmt.Errorf("wait for profile: %w", ctx.Err())
	case res := <-resultCh:
		if res.Err != nil {
			return domain.User{}, res.Err
		}

		return res.Val.(domain.User), nil //nolint:forcetypeassert
	}
}

func (s *StoreSessionService) fetch(ctx context.Context, sessionID, token string) (domain.User, error) {
	s.update(sessionID, func(st *sessionState) {
		st.loading = true
		st.err = ""
	})

	var resp domain.ProfileResponse

	err := s.api.Do(ctx, apiclient.Call{
		Method: http.MethodGet,
		Path:   profilePath,
		Token:  token,
	}, &resp)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			if delErr := s.repo.DeleteToken(ctx, sessionID); delErr != nil {
				err = errors.Join(err, delErr)
			}
		}

		s.fail(ctx, sessionID, err, apiclient.MessageOr(err, MsgFetchProfile))

		return domain.User{}, fmt.Errorf("get profile: %w", err)
	}

	if resp.User == nil {
		s.fail(ctx, sessionID, domain.ErrNoUserData, MsgNoUserData)

		return domain.User{}, domain.ErrNoUserData
	}

	user := resp.User.Normalize()
	view, viewErr := domain.ResolveView(user)

	// A login or logout that raced this fetch owns the session now.
	if current, ok, _ := s.repo.GetToken(ctx, sessionID); !ok || current != token {
		s.mu.Lock()
		if st, ok := s.states[sessionID]; ok {
			st.loading = false
		}
		s.mu.Unlock()

		return domain.User{}, fmt.Errorf("%w: session changed during fetch", domain.ErrNoToken)
	}

	s.update(sessionID, func(st *sessionState) {
		st.user = &user
		st.view = view
		st.loading = false
		st.err = ""
		st.fetchedAt = s.now()

		if viewErr != nil {
			st.err = viewErr.Error()
		}
	})

	s.emit(ctx, Event{Kind: ProfileLoaded, SessionID: sessionID, User: &user})

	return user, nil
}

// Current implements SessionService.Current.
func (s *StoreSessionService) Current(ctx context.Context, sessionID string) (domain.View, error) {
	s.mu.Lock()
	st, ok := s.states[sessionID]
	fresh := ok && st.user != nil && (s.cfg.ProfileTTL <= 0 || s.now().Sub(st.fetchedAt) < s.cfg.ProfileTTL)

	var (
		view domain.View
		user domain.User
	)

	if fresh {
		view, user = st.view, *st.user
	}
	s.mu.Unlock()

	if !fresh {
		var err error

		user, err = s.FetchProfile(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		view, err = domain.ResolveView(user)
		if err != nil {
			return nil, err
		}

		return view, nil
	}

	if view == nil {
		return domain.ResolveView(user)
	}

	return view, nil
}

// Refresh implements SessionService.Refresh.
func (s *StoreSessionService) Refresh(ctx context.Context, sessionID string) (domain.View, error) {
	s.mu.Lock()
	if st, ok := s.states[sessionID]; ok {
		st.fetchedAt = time.Time{}
	}
	s.mu.Unlock()

	user, err := s.FetchProfile(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return domain.ResolveView(user)
}

// State implements SessionService.State.
func (s *StoreSessionService) State(sessionID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[sessionID]
	if !ok {
		return State{}
	}

	out := State{View: st.view, Loading: st.loading, Err: st.err}

	if st.user != nil {
		user := *st.user
		out.User = &user
	}

	return out
}

// Logout implements SessionService.Logout.
func (s *StoreSessionService) Logout(ctx context.Context, sessionID string) (err error) {
	log := s.log.With(logging.Group("session", "id", sessionID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "logout failed", "error", err)
		} else {
			log.DebugContext(ctx, "logged out")
		}
	}()

	if err := s.repo.DeleteToken(ctx, sessionID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	s.mu.Lock()
	delete(s.states, sessionID)
	s.mu.Unlock()

	s.group.Forget(sessionID)

	s.emit(ctx, Event{Kind: LoggedOut, SessionID: sessionID})

	return nil
}

// Subscribe implements SessionService.Subscribe.
func (s *StoreSessionService) Subscribe(fn func(context.Context, Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.subscribers, id)
	}
}

func (s *StoreSessionService) fail(ctx context.Context, sessionID string, err error, msg string) {
	s.update(sessionID, func(st *sessionState) {
		st.user = nil
		st.view = nil
		st.loading = false
		st.err = msg
	})

	s.emit(ctx, Event{Kind: ProfileFailed, SessionID: sessionID, Err: err})
}

func (s *StoreSessionService) update(sessionID string, fn func(st *sessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[sessionID]
	if !ok {
		if len(s.states) >= sweepThreshold {
			s.sweepLocked()
		}

		st = &sessionState{}
		s.states[sessionID] = st
	}

	fn(st)
	st.touchedAt = s.now()
}

// sweepLocked drops entries not touched within the profile TTL. Callers hold s.mu.
func (s *StoreSessionService) sweepLocked() {
	ttl := s.cfg.ProfileTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	cutoff := s.now().Add(-ttl)

	for id, st := range s.states {
		if !st.loading && st.touchedAt.Before(cutoff) {
			delete(s.states, id)
		}
	}
}

func (s *StoreSessionService) emit(ctx context.Context, event Event) {
	s.mu.Lock()
	subscribers := make([]func(context.Context, Event), 0, len(s.subscribers))

	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(ctx, event)
	}
}
