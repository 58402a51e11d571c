package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acheong08/neuromap/internal/canvas"
	"github.com/acheong08/neuromap/internal/generate"
	"github.com/acheong08/neuromap/internal/layout"
	"github.com/acheong08/neuromap/internal/metrics"
	"github.com/acheong08/neuromap/internal/proxy"
)

const testRoadmap = `{"nodes":[
	{"id":"root","label":"Start Here","description":"Begin","category":"foundation","complexity":"beginner"},
	{"id":"python","parentId":"root","label":"Python","description":"Language basics","category":"foundation","complexity":"beginner"},
	{"id":"rag","parentId":"python","label":"RAG","description":"Retrieval","category":"engineering","complexity":"intermediate"}
]}`

const testDetails = `{
	"summary":"Where every roadmap begins",
	"learningObjectives":["Orientation"],
	"resources":[{"title":"YouTube: Intro","type":"video","url":"https://www.youtube.com/watch?v=abc"}],
	"projectIdea":"Write a plan"
}`

// upstream fakes the generation endpoint, answering by the requested schema.
// Storing a new value in status changes the answer of later requests.
func upstream(t *testing.T, status *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := int(status.Load()); code != http.StatusOK {
			http.Error(w, `{"error":"Gemini API request failed"}`, code)
			return
		}
		var req generate.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		text := testDetails
		if schema := req.Data.Config.ResponseSchema; schema != nil && slices.Contains(schema.Required, "nodes") {
			text = testRoadmap
		}
		body, err := generate.Envelope(text)
		require.NoError(t, err)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, upstreamStatus int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	status := &atomic.Int32{}
	status.Store(int32(upstreamStatus))
	client := generate.NewClient(upstream(t, status).URL)
	collector := metrics.New()
	services := Services{
		Generator: client,
		Details:   client,
		Layout:    layout.DefaultConfig(),
		Style:     canvas.DefaultStyle(),
		Metrics:   collector,
	}
	handler := proxy.NewHandler(nil, proxy.DefaultBreakerConfig(), collector, nil)

	srv := httptest.NewServer(New(ctx, services, handler, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, status
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType MessageType, payload any) {
	t.Helper()
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil reads messages until match accepts one, returning everything seen
func readUntil(t *testing.T, conn *websocket.Conn, match func(Message) bool) []Message {
	t.Helper()
	var seen []Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for message, saw %d", len(seen))
		seen = append(seen, msg)
		if match(msg) {
			return seen
		}
	}
}

func ofType(msgType MessageType) func(Message) bool {
	return func(m Message) bool { return m.Type == msgType }
}

func decode[T any](t *testing.T, msg Message) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	return payload
}

func TestWebSocketGenerate(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)
	conn := dial(t, srv)

	readUntil(t, conn, ofType(TypeLegend))

	send(t, conn, TypeResize, ResizePayload{Width: 800, Height: 600})
	send(t, conn, TypeGenerate, nil)

	seen := readUntil(t, conn, ofType(TypeComplete))
	complete := decode[CompletePayload](t, seen[len(seen)-1])
	assert.True(t, complete.Success)
	assert.Equal(t, 3, complete.Nodes)

	var drawn *ScenePayload
	var progress []int
	for _, msg := range seen {
		switch msg.Type {
		case TypeScene:
			scene := decode[ScenePayload](t, msg)
			if scene.NodeCount > 0 {
				drawn = &scene
			}
		case TypeProgress:
			progress = append(progress, decode[ProgressPayload](t, msg).Percent)
		}
	}
	require.NotNil(t, drawn, "a populated scene precedes complete")
	assert.Equal(t, 3, drawn.NodeCount)
	assert.Contains(t, drawn.SVG, `data-node-id="rag"`)
	assert.Contains(t, drawn.SVG, "translate(100,300) scale(0.8)")
	assert.Equal(t, []int{0, 30, 60, 80, 100}, progress)
}

func TestWebSocketClickOpensDetails(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)
	conn := dial(t, srv)

	send(t, conn, TypeResize, ResizePayload{Width: 800, Height: 600})
	send(t, conn, TypeGenerate, nil)
	readUntil(t, conn, ofType(TypeComplete))

	// Root's box centre lands on (188, 300) under the initial transform
	send(t, conn, TypePointerDown, PointerPayload{X: 188, Y: 300})
	send(t, conn, TypePointerUp, PointerPayload{X: 188, Y: 300})

	seen := readUntil(t, conn, func(m Message) bool {
		return m.Type == TypeDetails && decode[DetailsPayload](t, m).State.String() != "loading"
	})

	var selected *NodeSelectedPayload
	for _, msg := range seen {
		if msg.Type == TypeNodeSelected {
			payload := decode[NodeSelectedPayload](t, msg)
			selected = &payload
		}
	}
	require.NotNil(t, selected)
	assert.Equal(t, "root", selected.Node.ID)

	var details map[string]any
	require.NoError(t, json.Unmarshal(seen[len(seen)-1].Payload, &details))
	assert.Equal(t, "loaded", details["state"])
	assert.Equal(t, "Where every roadmap begins", details["details"].(map[string]any)["summary"])
}

func TestWebSocketGenerationFailure(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError)
	conn := dial(t, srv)

	send(t, conn, TypeResize, ResizePayload{Width: 800, Height: 600})
	send(t, conn, TypeGenerate, nil)

	seen := readUntil(t, conn, ofType(TypeError))
	for _, msg := range seen {
		if msg.Type == TypeScene {
			assert.Zero(t, decode[ScenePayload](t, msg).NodeCount)
		}
		assert.NotEqual(t, TypeComplete, msg.Type)
	}
	payload := decode[ErrorPayload](t, seen[len(seen)-1])
	assert.Equal(t, CodeGenerationFailed, payload.Code)
}

// generateAndOpenRoot draws the roadmap and waits for root's details
func generateAndOpenRoot(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	send(t, conn, TypeResize, ResizePayload{Width: 800, Height: 600})
	send(t, conn, TypeGenerate, nil)
	readUntil(t, conn, ofType(TypeComplete))

	send(t, conn, TypePointerDown, PointerPayload{X: 188, Y: 300})
	send(t, conn, TypePointerUp, PointerPayload{X: 188, Y: 300})
	readUntil(t, conn, func(m Message) bool {
		return m.Type == TypeDetails && decode[DetailsPayload](t, m).State.String() == "loaded"
	})
}

func TestWebSocketRegenerateResetsSelection(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)
	conn := dial(t, srv)
	generateAndOpenRoot(t, conn)

	send(t, conn, TypeGenerate, nil)
	seen := readUntil(t, conn, ofType(TypeComplete))

	var closed bool
	var last *ScenePayload
	for _, msg := range seen {
		switch msg.Type {
		case TypeDetails:
			payload := decode[DetailsPayload](t, msg)
			if payload.State.String() == "closed" {
				closed = true
				assert.Nil(t, payload.Node)
				assert.Nil(t, payload.Details)
			}
		case TypeScene:
			scene := decode[ScenePayload](t, msg)
			last = &scene
		}
	}
	assert.True(t, closed, "the panel of the previous roadmap is closed")
	require.NotNil(t, last)
	assert.Equal(t, 3, last.NodeCount)
	assert.Empty(t, last.Selected, "root exists again but is not highlighted")
	assert.NotContains(t, last.SVG, `filter="url(#glow)"`)
}

func TestWebSocketFailedRegenerateClearsCanvas(t *testing.T) {
	srv, status := newTestServer(t, http.StatusOK)
	conn := dial(t, srv)
	generateAndOpenRoot(t, conn)

	status.Store(http.StatusInternalServerError)
	send(t, conn, TypeGenerate, nil)
	seen := readUntil(t, conn, ofType(TypeError))

	var last *ScenePayload
	var closed bool
	for _, msg := range seen {
		switch msg.Type {
		case TypeScene:
			scene := decode[ScenePayload](t, msg)
			last = &scene
		case TypeDetails:
			closed = closed || decode[DetailsPayload](t, msg).State.String() == "closed"
		}
	}
	require.NotNil(t, last, "the stale tree is replaced")
	assert.Zero(t, last.NodeCount)
	assert.True(t, closed)
	assert.Equal(t, CodeGenerationFailed, decode[ErrorPayload](t, seen[len(seen)-1]).Code)
}

func TestWebSocketRejectsBadMessages(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)
	conn := dial(t, srv)

	send(t, conn, "teleport", nil)
	seen := readUntil(t, conn, ofType(TypeError))
	assert.Equal(t, CodeBadRequest, decode[ErrorPayload](t, seen[len(seen)-1]).Code)

	send(t, conn, TypeSelect, SelectPayload{NodeID: "nowhere"})
	seen = readUntil(t, conn, ofType(TypeError))
	assert.Contains(t, decode[ErrorPayload](t, seen[len(seen)-1]).Message, "nowhere")

	send(t, conn, TypePing, nil)
	readUntil(t, conn, ofType(TypePong))
}

func TestHTTPRoutes(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "<title>NeuroMap</title>")

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/gemini", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"OK"}`, string(body))

	resp, err = http.Post(srv.URL+"/api/gemini", "application/json",
		strings.NewReader(`{"action":"generateContent","data":{"model":"m","contents":"hi"}}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestMetricsTrackConnections(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK)
	conn := dial(t, srv)
	readUntil(t, conn, ofType(TypeLegend))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "neuromap_websocket_connections 1")
}

func TestCheckOrigin(t *testing.T) {
	s := New(context.Background(), Services{}, nil, []string{"http://allowed.test"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, s.checkOrigin(r), "same-origin tools send no Origin")

	r.Header.Set("Origin", "http://allowed.test")
	assert.True(t, s.checkOrigin(r))

	r.Header.Set("Origin", "http://evil.test")
	assert.False(t, s.checkOrigin(r))
}
