package realtime

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// Reconnect defaults.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = time.Second
)

// Handler receives dispatched events. Handlers run on the connection's read
// goroutine and must not block.
type Handler func(Event)

// Backoff returns the delay before reconnect attempt n (1-based):
// base·2^(n-1).
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

// Service is a realtime client. It keeps one WebSocket connection open
// between [Service.Connect] and [Service.Disconnect], reconnecting after a
// drop up to MaxAttempts times.
type Service struct {
	url         string
	header      http.Header
	dialer      *websocket.Dialer
	logger      *log.Logger
	maxAttempts int
	baseDelay   time.Duration

	mu       sync.Mutex
	handlers map[string]map[int]Handler
	nextID   int
	conn     *websocket.Conn
	cancel   context.CancelFunc
	done     chan struct{}
}

// ServiceOption configures a [Service].
type ServiceOption func(*Service)

// WithReconnect sets the attempt limit and base delay of the backoff.
func WithReconnect(maxAttempts int, baseDelay time.Duration) ServiceOption {
	return func(s *Service) {
		s.maxAttempts = maxAttempts
		s.baseDelay = baseDelay
	}
}

// WithServiceLogger sets the service's logger.
func WithServiceLogger(l *log.Logger) ServiceOption { return func(s *Service) { s.logger = l } }

// WithToken sends a bearer token on the handshake.
func WithToken(token string) ServiceOption {
	return func(s *Service) {
		if token != "" {
			s.header.Set("Authorization", "Bearer "+token)
		}
	}
}

// NewService creates a disconnected client for the ws:// or wss:// URL.
func NewService(url string, opts ...ServiceOption) *Service {
	s := &Service{
		url:         url,
		header:      http.Header{},
		dialer:      websocket.DefaultDialer,
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		handlers:    make(map[string]map[int]Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers h for events of the given type, or for every event
// with [Wildcard]. The returned func removes the subscription.
func (s *Service) Subscribe(eventType string, h Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	if s.handlers[eventType] == nil {
		s.handlers[eventType] = make(map[int]Handler)
	}
	s.handlers[eventType][id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers[eventType], id)
	}
}

// Connect dials the server. Calling Connect while connected is a no-op.
func (s *Service) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.conn = conn
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, conn, s.done)
	s.logger.Info("realtime connected", "url", s.url)
	return nil
}

// Connected reports whether the service holds an open connection.
func (s *Service) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Disconnect closes the connection and stops reconnecting. It waits for the
// read goroutine to exit.
func (s *Service) Disconnect() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("realtime disconnected", "url", s.url)
}

func (s *Service) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, s.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, errors.Wrap(errors.ErrCodeUnauthorized, err, "dial %s", s.url)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "dial %s", s.url)
	}
	return conn, nil
}

func (s *Service) run(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for conn != nil {
		err := s.read(ctx, conn)
		if ctx.Err() != nil {
			s.setConn(nil)
			return
		}
		s.logger.Warn("realtime connection lost", "err", err)
		s.setConn(nil)
		conn = s.reconnect(ctx)
	}

	// Gave up: release the slot so Connect can be called again.
	s.mu.Lock()
	if s.done == done && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}

func (s *Service) read(ctx context.Context, conn *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		s.dispatch(ev)
	}
}

func (s *Service) reconnect(ctx context.Context) *websocket.Conn {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		delay := Backoff(s.baseDelay, attempt)
		s.logger.Info("reconnecting", "attempt", attempt, "delay", delay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		conn, err := s.dial(ctx)
		if err == nil {
			s.setConn(conn)
			return conn
		}
		s.logger.Debug("reconnect failed", "attempt", attempt, "err", err)
	}
	s.logger.Error("max reconnect attempts reached", "attempts", s.maxAttempts)
	return nil
}

func (s *Service) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *Service) dispatch(ev Event) {
	s.mu.Lock()
	var hs []Handler
	for _, h := range s.handlers[ev.Type] {
		hs = append(hs, h)
	}
	for _, h := range s.handlers[Wildcard] {
		hs = append(hs, h)
	}
	s.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}
