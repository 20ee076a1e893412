// Package panel serves the debug panel: a small HTML page and JSON API that queue demo actions, plus a websocket
// that pushes the latest demo snapshot.
package panel

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/mo-kasiri/Three-IK/demo"
)

//go:embed index.html
var indexHTML []byte

var (
	// ErrBusy is returned to clients when the action queue is full.
	ErrBusy = errors.New("action queue is full")

	// ErrNoState is returned by GET /api/state before the first snapshot was published.
	ErrNoState = errors.New("no state published yet")
)

// panel is the implementation of the Panel interface.
type panel struct {
	mu *sync.Mutex

	addr         string
	accessLog    io.Writer
	actionBuffer int
	actions      chan demo.Action
	hub          *hub
	router       *mux.Router
	handler      http.Handler
	upgrader     websocket.Upgrader
	server       *http.Server
	listenAddr   string
	snapshot     *demo.Snapshot
}

// Panel is the debug panel server. It never touches demo state: requests become demo.Action values on Actions,
// and the demo reports back through Publish.
type Panel interface {
	// Handler returns the HTTP handler with logging and recovery middleware applied.
	Handler() http.Handler

	// Actions returns the channel of queued actions. The frame loop drains it.
	Actions() <-chan demo.Action

	// Publish records snap as the current state and pushes it to websocket clients. It never blocks.
	Publish(snap demo.Snapshot)

	// Start listens on the configured address and serves in a background goroutine.
	//
	// Returns:
	//   - error: an error if the address cannot be bound
	Start() error

	// Addr returns the bound address once started, otherwise the configured one.
	Addr() string

	// Close shuts the server down and disconnects websocket clients.
	Close(ctx context.Context) error
}

var _ Panel = &panel{}

// NewPanel creates a panel. It does not listen until Start is called.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Panel: the panel
func NewPanel(options ...PanelBuilderOption) Panel {
	p := &panel{
		mu:           &sync.Mutex{},
		addr:         "127.0.0.1:8089",
		accessLog:    os.Stdout,
		actionBuffer: 64,
		hub:          newHub(),
	}
	for _, opt := range options {
		opt(p)
	}
	p.actions = make(chan demo.Action, p.actionBuffer)

	r := mux.NewRouter()
	r.HandleFunc("/", p.handleIndex).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", p.handleState).Methods(http.MethodGet)
	api.HandleFunc("/pose", p.handleAction(demo.ActionPose{})).Methods(http.MethodPost)
	api.HandleFunc("/solve", p.handleAction(demo.ActionSolve{})).Methods(http.MethodPost)
	api.HandleFunc("/export", p.handleAction(demo.ActionExport{})).Methods(http.MethodPost)
	api.HandleFunc("/target", p.handleTarget).Methods(http.MethodPut)
	api.HandleFunc("/wireframe", p.handleFlag(func(v bool) demo.Action { return demo.ActionSetWireframe{Value: v} })).Methods(http.MethodPut)
	api.HandleFunc("/autoupdate", p.handleFlag(func(v bool) demo.Action { return demo.ActionSetAutoUpdate{Value: v} })).Methods(http.MethodPut)
	r.HandleFunc("/ws", p.handleWebsocket).Methods(http.MethodGet)
	p.router = r

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	p.handler = handlers.LoggingHandler(p.accessLog, h)
	return p
}

func (p *panel) Handler() http.Handler {
	return p.handler
}

func (p *panel) Actions() <-chan demo.Action {
	return p.actions
}

func (p *panel) Publish(snap demo.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[Panel] failed to encode snapshot: %v", err)
		return
	}
	p.mu.Lock()
	p.snapshot = &snap
	p.mu.Unlock()
	p.hub.broadcast(data)
}

func (p *panel) Start() error {
	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	srv := &http.Server{Handler: p.handler}

	p.mu.Lock()
	p.server = srv
	p.listenAddr = ln.Addr().String()
	p.mu.Unlock()

	log.Printf("[Panel] serving on http://%s", ln.Addr())
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Panel] server stopped: %v", err)
		}
	}()
	return nil
}

func (p *panel) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listenAddr != "" {
		return p.listenAddr
	}
	return p.addr
}

func (p *panel) Close(ctx context.Context) error {
	p.hub.close()
	p.mu.Lock()
	srv := p.server
	p.server = nil
	p.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// enqueue queues act without blocking.
func (p *panel) enqueue(act demo.Action) error {
	select {
	case p.actions <- act:
		return nil
	default:
		return ErrBusy
	}
}

func (p *panel) current() (demo.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot == nil {
		return demo.Snapshot{}, false
	}
	return *p.snapshot, true
}
