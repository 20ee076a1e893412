package panel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mo-kasiri/Three-IK/demo"
)

func newTestPanel(t *testing.T, options ...PanelBuilderOption) (Panel, *httptest.Server) {
	t.Helper()
	p := NewPanel(append([]PanelBuilderOption{WithAccessLog(io.Discard)}, options...)...)
	srv := httptest.NewServer(p.Handler())
	t.Cleanup(func() {
		p.Close(context.Background())
		srv.Close()
	})
	return p, srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func nextAction(t *testing.T, p Panel) demo.Action {
	t.Helper()
	select {
	case act := <-p.Actions():
		return act
	case <-time.After(time.Second):
		t.Fatal("no action queued")
		return nil
	}
}

func TestRoutesQueueActions(t *testing.T) {
	p, srv := newTestPanel(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   demo.Action
	}{
		{"pose", http.MethodPost, "/api/pose", "", demo.ActionPose{}},
		{"solve", http.MethodPost, "/api/solve", "", demo.ActionSolve{}},
		{"export", http.MethodPost, "/api/export", "", demo.ActionExport{}},
		{"wireframe", http.MethodPut, "/api/wireframe", `{"value": false}`, demo.ActionSetWireframe{Value: false}},
		{"autoupdate", http.MethodPut, "/api/autoupdate", `{"value": true}`, demo.ActionSetAutoUpdate{Value: true}},
		{"target", http.MethodPut, "/api/target", `{"x": 1, "y": 2, "z": 3}`, demo.ActionSetTarget{X: 1, Y: 2, Z: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != http.StatusAccepted {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := nextAction(t, p); got != tt.want {
				t.Errorf("action = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTargetKeepsOmittedAxes(t *testing.T) {
	p, srv := newTestPanel(t)
	p.Publish(demo.Snapshot{Target: [3]float32{0, 40, 0}})

	resp := do(t, http.MethodPut, srv.URL+"/api/target", `{"x": 5}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	want := demo.ActionSetTarget{X: 5, Y: 40, Z: 0}
	if got := nextAction(t, p); got != want {
		t.Errorf("action = %#v, want %#v", got, want)
	}
}

func TestRejectsBadRequests(t *testing.T) {
	_, srv := newTestPanel(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed json", http.MethodPut, "/api/target", `{"x":`, http.StatusBadRequest},
		{"unknown field", http.MethodPut, "/api/target", `{"w": 1}`, http.StatusBadRequest},
		{"missing value", http.MethodPut, "/api/wireframe", `{}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/api/pose", "", http.StatusMethodNotAllowed},
		{"no state yet", http.MethodGet, "/api/state", "", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := do(t, tt.method, srv.URL+tt.path, tt.body); resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestFullQueueRefuses(t *testing.T) {
	_, srv := newTestPanel(t, WithActionBuffer(1))

	if resp := do(t, http.MethodPost, srv.URL+"/api/solve", ""); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("first status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, srv.URL+"/api/solve", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("second status = %d, want 503", resp.StatusCode)
	}
}

func TestStateAndIndex(t *testing.T) {
	p, srv := newTestPanel(t)
	snap := demo.Snapshot{AutoUpdate: true, Wireframe: true, Distance: 8, SegmentHeight: 8, SegmentCount: 4, BoneCount: 7}
	p.Publish(snap)

	resp := do(t, http.MethodGet, srv.URL+"/api/state", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got demo.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got != snap {
		t.Errorf("state = %+v, want %+v", got, snap)
	}

	resp = do(t, http.MethodGet, srv.URL+"/", "")
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/api/target") {
		t.Error("index page does not reference the API")
	}
}

func TestWebsocketPushesSnapshots(t *testing.T) {
	p, srv := newTestPanel(t)
	first := demo.Snapshot{BoneCount: 7, Distance: 8}
	p.Publish(first)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	read := func() demo.Snapshot {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var s demo.Snapshot
		if err := conn.ReadJSON(&s); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		return s
	}

	if got := read(); got != first {
		t.Errorf("initial message = %+v, want %+v", got, first)
	}

	second := demo.Snapshot{BoneCount: 7, Distance: 2.5, AutoUpdate: true}
	p.Publish(second)
	if got := read(); got != second {
		t.Errorf("pushed message = %+v, want %+v", got, second)
	}
}

func TestStartAndClose(t *testing.T) {
	p := NewPanel(WithAddr("127.0.0.1:0"), WithAccessLog(io.Discard))
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if strings.HasSuffix(p.Addr(), ":0") {
		t.Fatalf("Addr = %s, want the bound port", p.Addr())
	}

	resp, err := http.Post("http://"+p.Addr()+"/api/pose", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}
}
