package browser

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

// Logger is the logging surface the browser package needs.
type Logger interface {
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Session is one live browser and its identifier.
type Session struct {
	ID        string
	Kind      driver.Kind
	Options   Options
	CreatedAt time.Time

	// Handle is owned by the session; only the registry quits it
	Handle driver.Handle
}

// SessionInfo describes a session without exposing its handle.
type SessionInfo struct {
	ID        string
	Kind      driver.Kind
	Headless  bool
	CreatedAt time.Time
	Current   bool
}

// Registry tracks open sessions and the current session pointer.
// It is safe for concurrent use.
type Registry struct {
	launcher driver.Launcher
	logger   Logger

	// ShutdownConcurrency bounds parallel quits during Shutdown; zero means unbounded
	ShutdownConcurrency int

	// mu guards sessions and current together
	mu       sync.Mutex
	sessions map[string]*Session
	current  string
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(launcher driver.Launcher, logger Logger) *Registry {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Registry{
		launcher: launcher,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Open launches a browser of the given kind, registers it and makes it the
// current session.
func (r *Registry) Open(ctx context.Context, kind string, opts Options) (*Session, error) {
	engine, err := EngineFor(kind)
	if err != nil {
		return nil, err
	}

	args := engine.StartupArgs(opts)
	h, err := r.launcher.Launch(ctx, engine.Kind(), args)
	if err != nil {
		return nil, &Fault{
			Kind:    LaunchFailure,
			Message: fmt.Sprintf("failed to launch %s browser", engine.Kind()),
			Details: map[string]interface{}{"kind": string(engine.Kind()), "arguments": args},
			Err:     err,
		}
	}

	s := &Session{
		ID:        fmt.Sprintf("%s-%s", engine.Kind(), uuid.NewString()),
		Kind:      engine.Kind(),
		Options:   opts,
		CreatedAt: time.Now(),
		Handle:    h,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.current = s.ID
	r.mu.Unlock()

	r.logger.Infof("opened session %s", s.ID)
	return s, nil
}

// Close quits the current session. The entry and the pointer are removed
// whether or not the quit succeeds.
func (r *Registry) Close(ctx context.Context) (string, error) {
	r.mu.Lock()
	s, ok := r.sessions[r.current]
	if ok {
		delete(r.sessions, s.ID)
	}
	r.current = ""
	r.mu.Unlock()

	if !ok {
		return "", errNoActiveSession()
	}

	if err := s.Handle.Quit(); err != nil {
		return s.ID, &Fault{
			Kind:    EngineFailure,
			Message: fmt.Sprintf("failed to quit browser session %s", s.ID),
			Details: map[string]interface{}{"session_id": s.ID},
			Err:     err,
		}
	}

	r.logger.Infof("closed session %s", s.ID)
	return s.ID, nil
}

// Current returns the current session. An unset or stale pointer yields a
// NoActiveSession fault.
func (r *Registry) Current() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[r.current]
	if !ok {
		return nil, errNoActiveSession()
	}
	return s, nil
}

// Sessions returns a snapshot of live sessions ordered by creation time.
func (r *Registry) Sessions() []SessionInfo {
	r.mu.Lock()
	infos := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, SessionInfo{
			ID:        s.ID,
			Kind:      s.Kind,
			Headless:  s.Options.Headless,
			CreatedAt: s.CreatedAt,
			Current:   s.ID == r.current,
		})
	}
	r.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Shutdown quits every live session. Individual failures are logged and do
// not stop the remaining quits. The registry is empty afterwards.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.current = ""
	r.mu.Unlock()

	if len(sessions) == 0 {
		return
	}

	g, _ := errgroup.WithContext(ctx)
	if r.ShutdownConcurrency > 0 {
		g.SetLimit(r.ShutdownConcurrency)
	}
	for _, s := range sessions {
		s := s
		g.Go(func() error {
			if err := s.Handle.Quit(); err != nil {
				r.logger.Errorf("failed to quit session %s during shutdown: %v", s.ID, err)
				return nil
			}
			r.logger.Infof("quit session %s during shutdown", s.ID)
			return nil
		})
	}
	_ = g.Wait()
}
