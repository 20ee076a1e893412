package panel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/mo-kasiri/Three-IK/demo"
)

// targetRequest is the body of PUT /api/target. Omitted axes keep their current value.
type targetRequest struct {
	X *float32 `json:"x"`
	Y *float32 `json:"y"`
	Z *float32 `json:"z"`
}

// flagRequest is the body of PUT /api/wireframe and PUT /api/autoupdate.
type flagRequest struct {
	Value *bool `json:"value"`
}

type statusResponse struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Panel] failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, statusResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (p *panel) queue(w http.ResponseWriter, act demo.Action) {
	if err := p.enqueue(act); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusAccepted, statusResponse{Status: "queued"})
}

func (p *panel) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (p *panel) handleState(w http.ResponseWriter, _ *http.Request) {
	snap, ok := p.current()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, ErrNoState)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleAction queues a fixed action.
func (p *panel) handleAction(act demo.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		p.queue(w, act)
	}
}

func (p *panel) handleTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cur, _ := p.current()
	act := demo.ActionSetTarget{X: cur.Target[0], Y: cur.Target[1], Z: cur.Target[2]}
	if req.X != nil {
		act.X = *req.X
	}
	if req.Y != nil {
		act.Y = *req.Y
	}
	if req.Z != nil {
		act.Z = *req.Z
	}
	p.queue(w, act)
}

// handleFlag queues the action built from a {"value": bool} body.
func (p *panel) handleFlag(build func(bool) demo.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req flagRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if req.Value == nil {
			writeError(w, http.StatusBadRequest, errors.New(`missing "value"`))
			return
		}
		p.queue(w, build(*req.Value))
	}
}

func (p *panel) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Panel] websocket upgrade failed: %v", err)
		return
	}
	p.hub.register(conn)
}
