// Package server runs the websocket map generation service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/levelgen/internal/config"
	"github.com/lawnchairsociety/levelgen/internal/logger"
	"github.com/lawnchairsociety/levelgen/internal/mapgen"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

// MapStore persists generated maps. *database.Database satisfies it.
type MapStore interface {
	SaveMap(m *mapgen.CompleteMap, catalogFingerprint string) (int64, error)
}

type Server struct {
	config  config.ServerConfig
	base    *mapgen.Config
	catalog *wfc.Catalog
	store   MapStore
	limits  *sessionLimits

	// ctx is cancelled on shutdown so running generations stop between rooms
	ctx    context.Context
	cancel context.CancelFunc

	httpServer   *http.Server
	sessions     map[*session]struct{}
	mu           sync.Mutex
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// New creates a server. base supplies every setting a request leaves out.
// store may be nil.
func New(cfg config.ServerConfig, base *mapgen.Config, catalog *wfc.Catalog, store MapStore) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:   cfg,
		base:     base,
		catalog:  catalog,
		store:    store,
		limits:   newSessionLimits(cfg.Connections),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[*session]struct{}),
	}
}

// Handler returns the HTTP handler serving /generate
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", s.handleUpgrade)
	return mux
}

// ListenAndServe serves on the configured listen address until Shutdown.
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("Generation service listening", "address", s.config.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting sessions, cancels running generations and closes
// open sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cancel()

		s.mu.Lock()
		srv := s.httpServer
		for sess := range s.sessions {
			sess.close()
		}
		s.mu.Unlock()

		if srv != nil {
			err = srv.Shutdown(ctx)
		}

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}
		logger.Info("Generation service stopped")
	})
	return err
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ip := clientAddr(r, s.config.TrustProxy)

	if s.ctx.Err() != nil {
		http.Error(w, "Server is shutting down.", http.StatusServiceUnavailable)
		return
	}

	release, err := s.limits.acquire(ip)
	if err != nil {
		logger.Warning("Session rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", ip,
			"reason", err)
		http.Error(w, err.Error(), http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.config.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("Session rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("WebSocket upgrade failed", "error", err)
		release()
		return
	}

	sess := newSession(conn, ip, s.config.MaxMessageSize, release)
	if !s.track(sess) {
		// Shutdown already closed the open sessions
		sess.close()
		return
	}
	go s.serve(sess)
}

// track registers a session unless shutdown has started. Shutdown cancels
// before it takes s.mu, so a tracked session is always seen by its close
// loop and wg.Add never races wg.Wait.
func (s *Server) track(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return false
	}
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	return true
}

// serve answers requests until the client goes away
func (s *Server) serve(sess *session) {
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
		sess.close()
		s.wg.Done()
	}()

	logger.Debug("Session opened", "client_ip", sess.ip)

	for {
		req, err := sess.readRequest()
		if err != nil {
			var reqErr *requestError
			if errors.As(err, &reqErr) {
				if err := sess.writeResponse(errorResponse(CodeInvalidRequest, err)); err != nil {
					return
				}
				continue
			}
			logger.Debug("Session closed", "client_ip", sess.ip, "reason", err)
			return
		}

		if err := sess.writeResponse(s.generate(req)); err != nil {
			logger.Debug("Failed to write response", "client_ip", sess.ip, "error", err)
			return
		}
	}
}

// generate runs one request with its own generator
func (s *Server) generate(req *Request) *Response {
	cfg, err := s.requestConfig(req)
	if err != nil {
		return errorResponse(CodeTooLarge, err)
	}

	gen, err := mapgen.NewGenerator(cfg, s.catalog)
	if err != nil {
		return errorResponse(CodeInvalidRequest, err)
	}

	m, err := gen.GenerateContext(s.ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		return errorResponse(CodeUnavailable, errors.New("server is shutting down"))
	default:
		return errorResponse(CodeUnableToGenerate, err)
	}

	resp := &Response{OK: true, Map: newMapPayload(m)}
	if s.store != nil {
		id, err := s.store.SaveMap(m, s.catalog.Source)
		if err != nil {
			logger.Error("Failed to store map", "seed", m.Seed, "error", err)
		} else {
			resp.ID = id
		}
	}
	return resp
}

// requestConfig overlays a request on the base config
func (s *Server) requestConfig(req *Request) (*mapgen.Config, error) {
	cfg := *s.base
	if req.Width != 0 {
		cfg.Width = req.Width
	}
	if req.Height != 0 {
		cfg.Height = req.Height
	}
	if req.MinRoomSize != 0 {
		cfg.MinRoomSize = req.MinRoomSize
	}
	if req.MaxRoomSize != 0 {
		cfg.MaxRoomSize = req.MaxRoomSize
	}
	if req.Layout != "" {
		cfg.Layout = mapgen.Layout(req.Layout)
	}
	if req.FallbackPlain {
		cfg.FallbackPlain = true
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	} else {
		cfg.Seed = time.Now().UnixNano()
	}

	if limit := s.config.MaxCells; limit > 0 && cfg.Width*cfg.Height > limit {
		return nil, fmt.Errorf("%dx%d map exceeds the %d cell limit", cfg.Width, cfg.Height, limit)
	}
	return &cfg, nil
}
