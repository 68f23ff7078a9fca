// Package server exposes the chamber over HTTP: the single-page app, its
// static assets, and the /ws duplex endpoint that runs council turns.
package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"daimon/internal/canvas"
	"daimon/internal/config"
	"daimon/internal/council"
	"daimon/internal/logging"
	"daimon/internal/session"
)

//go:embed assets
var assetsFS embed.FS

// defaultInclude is used when a turn message names no participants.
var defaultInclude = []string{"flash", "dreamer"}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1 << 20,
	WriteBufferSize: 1 << 20,
	// The app is served same-origin; local tooling connects from file:// too.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server is the chamber's web surface.
type Server struct {
	cfg  *config.Config
	orch *council.Orchestrator
}

// New creates a server over a configured orchestrator.
func New(cfg *config.Config, orch *council.Orchestrator) *Server {
	return &Server{cfg: cfg, orch: orch}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	files := http.FileServer(http.FS(assets))

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.ServeFileFS(w, r, assets, "index.html")
			return
		}
		files.ServeHTTP(w, r)
	})
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Server("chamber listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// clientMessage is one inbound duplex frame. RenderImage and SharedMemory
// are pointers so an absent field is distinguishable from false.
type clientMessage struct {
	Type         string   `json:"type"`
	Message      string   `json:"message"`
	Include      []string `json:"include"`
	RenderImage  *bool    `json:"render_image"`
	SharedMemory *bool    `json:"shared_memory"`
	Enabled      bool     `json:"enabled"`
}

// handleWS owns one connection: handshake, then a serialized turn loop.
// Turns never overlap on a connection; the client disables input while one
// runs.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.ServerError("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	cv, err := canvas.Open(s.cfg.Server.CanvasDir)
	if err != nil {
		logging.ServerError("canvas unavailable: %v", err)
		return
	}
	st := session.New(cv)
	em := &wsEmitter{conn: conn}

	if err := em.Emit(council.NewSessionEvent(st.ID, st.FrameCount())); err != nil {
		return
	}

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			logging.ServerDebug("session %s closed: %v", st.ID, err)
			return
		}

		msgType := msg.Type
		if msgType == "" {
			msgType = "message"
		}

		switch msgType {
		case "toggle_memory":
			st.SharedMemory = msg.Enabled
			if err := em.Emit(council.MemoryUpdateEvent{Type: "memory_update", FrameCount: st.FrameCount()}); err != nil {
				return
			}

		case "message":
			include := msg.Include
			if len(include) == 0 {
				include = defaultInclude
			}
			render := true
			if msg.RenderImage != nil {
				render = *msg.RenderImage
			}
			if msg.SharedMemory != nil {
				st.SharedMemory = *msg.SharedMemory
			}

			err := s.orch.Turn(r.Context(), st, council.TurnRequest{
				Message:     msg.Message,
				Include:     include,
				RenderImage: render,
			}, em)
			if err != nil {
				logging.ServerDebug("session %s turn aborted: %v", st.ID, err)
				return
			}

		default:
			// A stale client must not be able to wedge the server.
			logging.ServerDebug("session %s ignoring message type %q", st.ID, msgType)
		}
	}
}

// wsEmitter ships council events as JSON frames.
type wsEmitter struct {
	conn *websocket.Conn
}

func (e *wsEmitter) Emit(ev council.Event) error {
	return e.conn.WriteJSON(ev)
}
