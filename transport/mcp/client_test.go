package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/sokoblit/game/engine"
	"github.com/wricardo/sokoblit/game/service"
)

var glyphCodes = map[rune]int{
	'#': int(engine.TileWall),
	'$': int(engine.TileCrate),
	' ': int(engine.TileEmpty),
	'.': int(engine.TileCrateHome),
	'@': int(engine.TilePlayerHome),
}

// roomTiles expands text rows into a level-sized cell grid
func roomTiles(rows ...string) [][]int {
	tiles := make([][]int, engine.LevelHeight)
	for y := range tiles {
		tiles[y] = make([]int, engine.LevelWidth)
	}
	for ty, row := range rows {
		for tx, ch := range row {
			base := glyphCodes[ch]
			x, y := tx*2, ty*2
			tiles[y][x] = base
			tiles[y][x+1] = base + 1
			tiles[y+1][x] = base + 16
			tiles[y+1][x+1] = base + 17
		}
	}
	return tiles
}

func testView() *engine.View {
	return &engine.View{
		Tick:  201,
		Level: 8,
		Mode:  engine.ModePlay,
		Tiles: roomTiles(
			"#########",
			"#@  $  .#",
			"#   #   #",
			"#########",
		),
		Player: &engine.PlayerView{
			Location: engine.Point{X: 2, Y: 2},
			Facing:   engine.DirRight,
		},
	}
}

// recordedRequest is what the mock REST server saw
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
}

// mockAPI serves canned responses per path and records every request
type mockAPI struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]interface{}
}

func newMockAPI(t *testing.T) (*mockAPI, *httptest.Server) {
	t.Helper()
	m := &mockAPI{
		responses: make(map[string]interface{}),
	}
	server := httptest.NewServer(m)
	t.Cleanup(server.Close)
	return m, server
}

func (m *mockAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req.Body)
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	resp, ok := m.responses[r.Method+" "+r.URL.Path]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		return
	}
	json.NewEncoder(w).Encode(resp)
}

func (m *mockAPI) on(method, path string, resp interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[method+" "+path] = resp
}

func (m *mockAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		t.Fatal("Expected at least one API request")
	}
	return m.requests[len(m.requests)-1]
}

func (m *mockAPI) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	api, server := newMockAPI(t)
	api.on("GET", "/api", map[string]interface{}{"name": "SokoBlit API"})

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall("GET", "/api", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["name"] != "SokoBlit API" {
		t.Errorf("Expected name 'SokoBlit API', got %v", response["name"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url)

	if err := client.apiCall("GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_ErrorBody(t *testing.T) {
	_, server := newMockAPI(t)
	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/sessions/nope/view", nil, nil)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if err.Error() != "session not found" {
		t.Errorf("Expected error body to become the message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	api, server := newMockAPI(t)
	api.on("POST", "/api/sessions", service.SessionInfo{
		ID:         "ab12",
		ConfigName: "classic",
		Realtime:   true,
		Level:      8,
		Mode:       engine.ModeTransitionToOverview,
		View:       testView(),
	})

	client := NewClient(server.URL)
	ctx := context.Background()

	t.Run("with config and realtime", func(t *testing.T) {
		result, err := client.handleCreateSession(ctx, callTool("create_session", map[string]interface{}{
			"config_id": "classic",
			"realtime":  true,
		}))
		if err != nil {
			t.Fatalf("handleCreateSession failed: %v", err)
		}
		if result.IsError {
			t.Fatalf("Expected success, got %s", resultText(t, result))
		}

		text := resultText(t, result)
		for _, want := range []string{"Session created: ab12", "Config: classic", "realtime", "#P  $  .#"} {
			if !strings.Contains(text, want) {
				t.Errorf("Expected %q in result, got:\n%s", want, text)
			}
		}

		req := api.last(t)
		if req.Method != "POST" || req.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", req.Method, req.Path)
		}
		if req.Body["config_id"] != "classic" {
			t.Errorf("Expected config_id classic, got %v", req.Body["config_id"])
		}
		if req.Body["realtime"] != true {
			t.Errorf("Expected realtime true, got %v", req.Body["realtime"])
		}
	})

	t.Run("without arguments", func(t *testing.T) {
		result, err := client.handleCreateSession(ctx, callTool("create_session", nil))
		if err != nil {
			t.Fatalf("handleCreateSession failed: %v", err)
		}
		if result.IsError {
			t.Fatalf("Expected success, got %s", resultText(t, result))
		}
		if req := api.last(t); len(req.Body) != 0 {
			t.Errorf("Expected empty body, got %v", req.Body)
		}
	})
}

func TestClient_listSessions(t *testing.T) {
	api, server := newMockAPI(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	api.on("GET", "/api/sessions", map[string]interface{}{
		"count": 1,
		"total": 3,
		"sessions": []*service.SessionInfo{
			{ID: "ab12", ConfigName: "classic", Level: 8, Mode: engine.ModePlay, Tick: 300},
		},
	})

	result, err := client.handleListSessions(ctx, callTool("list_sessions", map[string]interface{}{"limit": float64(1)}))
	if err != nil {
		t.Fatalf("handleListSessions failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"(1 of 3)", "ab12", "mode=play", "tick=300", "clock=manual"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got:\n%s", want, text)
		}
	}
	if req := api.last(t); req.Query != "limit=1" {
		t.Errorf("Expected limit=1 query, got %q", req.Query)
	}

	api.on("GET", "/api/sessions", map[string]interface{}{"count": 0, "total": 0, "sessions": []interface{}{}})
	result, _ = client.handleListSessions(ctx, callTool("list_sessions", nil))
	if text := resultText(t, result); text != "No active sessions" {
		t.Errorf("Expected 'No active sessions', got %q", text)
	}
}

func TestClient_getView(t *testing.T) {
	api, server := newMockAPI(t)
	api.on("GET", "/api/sessions/ab12/view", testView())

	client := NewClient(server.URL)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]interface{}
		wantError bool
		want      []string
	}{
		{
			name: "renders room",
			args: map[string]interface{}{"session_id": "ab12"},
			want: []string{
				"Tick: 201 | Level: 8 | Mode: play",
				"Player: (1,1) facing right, idle",
				"#########\n#P  $  .#\n#   #   #\n#########\n",
			},
		},
		{
			name:      "missing session id",
			args:      map[string]interface{}{},
			wantError: true,
			want:      []string{"session_id is required"},
		},
		{
			name:      "unknown session",
			args:      map[string]interface{}{"session_id": "zzzz"},
			wantError: true,
			want:      []string{"session not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.handleGetView(ctx, callTool("get_view", tt.args))
			if err != nil {
				t.Fatalf("handleGetView returned error: %v", err)
			}
			if result.IsError != tt.wantError {
				t.Errorf("Expected IsError=%v, got %v", tt.wantError, result.IsError)
			}
			text := resultText(t, result)
			for _, want := range tt.want {
				if !strings.Contains(text, want) {
					t.Errorf("Expected %q in result, got:\n%s", want, text)
				}
			}
		})
	}
}

func TestClient_advance(t *testing.T) {
	api, server := newMockAPI(t)
	view := testView()
	view.Player.Location = engine.Point{X: 4, Y: 2}
	pos := engine.Point{X: 4, Y: 2}
	api.on("POST", "/api/sessions/ab12/advance", service.StepResult{
		Ticks: 25,
		Tick:  226,
		Events: []engine.Event{
			{Type: engine.EventMoveStarted, Tick: 202, Level: 8, Direction: engine.DirRight},
			{Type: engine.EventMoveFinished, Tick: 226, Level: 8, Direction: engine.DirRight, Position: &pos},
		},
		View: view,
	})

	client := NewClient(server.URL)
	ctx := context.Background()

	t.Run("move until idle", func(t *testing.T) {
		result, err := client.handleAdvance(ctx, callTool("advance", map[string]interface{}{
			"session_id": "ab12",
			"direction":  "Right",
			"until_idle": true,
		}))
		if err != nil {
			t.Fatalf("handleAdvance failed: %v", err)
		}
		text := resultText(t, result)
		for _, want := range []string{
			"Ran 25 tick(s), now at tick 226",
			"tick 202: move_started level=8 direction=right",
			"tick 226: move_finished level=8 direction=right at=(4,2)",
			"#@P $  .#",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("Expected %q in result, got:\n%s", want, text)
			}
		}

		req := api.last(t)
		if req.Body["direction"] != "right" {
			t.Errorf("Expected direction right, got %v", req.Body["direction"])
		}
		if req.Body["until_idle"] != true {
			t.Errorf("Expected until_idle true, got %v", req.Body["until_idle"])
		}
		if _, ok := req.Body["ticks"]; ok {
			t.Errorf("Expected ticks to be omitted, got %v", req.Body["ticks"])
		}
	})

	t.Run("ticks and toggle", func(t *testing.T) {
		_, err := client.handleAdvance(ctx, callTool("advance", map[string]interface{}{
			"session_id": "ab12",
			"ticks":      float64(100),
			"toggle":     true,
		}))
		if err != nil {
			t.Fatalf("handleAdvance failed: %v", err)
		}
		req := api.last(t)
		if req.Body["ticks"] != float64(100) {
			t.Errorf("Expected ticks 100, got %v", req.Body["ticks"])
		}
		if req.Body["toggle"] != true {
			t.Errorf("Expected toggle true, got %v", req.Body["toggle"])
		}
	})

	rejected := []struct {
		name string
		args map[string]interface{}
	}{
		{"bad direction", map[string]interface{}{"session_id": "ab12", "direction": "north"}},
		{"none direction", map[string]interface{}{"session_id": "ab12", "direction": "none"}},
		{"too many ticks", map[string]interface{}{"session_id": "ab12", "ticks": float64(service.MaxAdvanceTicks + 1)}},
		{"negative ticks", map[string]interface{}{"session_id": "ab12", "ticks": float64(-1)}},
		{"missing session", map[string]interface{}{"direction": "up"}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			before := api.count()
			result, err := client.handleAdvance(ctx, callTool("advance", tt.args))
			if err != nil {
				t.Fatalf("handleAdvance returned error: %v", err)
			}
			if !result.IsError {
				t.Errorf("Expected error result, got %s", resultText(t, result))
			}
			if api.count() != before {
				t.Error("Expected no API call for rejected arguments")
			}
		})
	}
}

func TestClient_sendInput(t *testing.T) {
	api, server := newMockAPI(t)
	mode := engine.ModeTransitionToPlay
	view := testView()
	view.Mode = engine.ModeTransitionToPlay
	view.Progress = 99
	api.on("POST", "/api/sessions/ab12/input", service.StepResult{
		Ticks:  1,
		Tick:   102,
		Events: []engine.Event{{Type: engine.EventModeChanged, Tick: 102, Level: 8, Mode: &mode}},
		View:   view,
	})

	client := NewClient(server.URL)

	result, err := client.handleSendInput(context.Background(), callTool("send_input", map[string]interface{}{
		"session_id": "ab12",
		"toggle":     true,
	}))
	if err != nil {
		t.Fatalf("handleSendInput failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"mode_changed level=8 mode=to_play", "Mode: to_play (progress 99/100)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got:\n%s", want, text)
		}
	}

	req := api.last(t)
	if req.Body["toggle"] != true {
		t.Errorf("Expected toggle true, got %v", req.Body["toggle"])
	}
	if _, ok := req.Body["direction"]; ok {
		t.Errorf("Expected direction to be omitted, got %v", req.Body["direction"])
	}
}

func TestClient_resetLevel(t *testing.T) {
	api, server := newMockAPI(t)
	api.on("POST", "/api/sessions/ab12/reset", map[string]interface{}{
		"message": "Level 8 reset",
		"view":    testView(),
	})

	client := NewClient(server.URL)

	result, err := client.handleResetLevel(context.Background(), callTool("reset_level", map[string]interface{}{
		"session_id": "ab12",
		"level":      float64(8),
	}))
	if err != nil {
		t.Fatalf("handleResetLevel failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.HasPrefix(text, "Level 8 reset") {
		t.Errorf("Expected reset message first, got:\n%s", text)
	}
	if req := api.last(t); req.Body["level"] != float64(8) {
		t.Errorf("Expected level 8, got %v", req.Body["level"])
	}
}

func TestClient_listLevels(t *testing.T) {
	api, server := newMockAPI(t)
	api.on("GET", "/api/levels", engine.Levels())

	client := NewClient(server.URL)

	result, err := client.handleListLevels(context.Background(), callTool("list_levels", nil))
	if err != nil {
		t.Fatalf("handleListLevels failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "•  8  origin (80,30)  left=7  right=9  up=3\n") {
		t.Errorf("Expected level 8 line, got:\n%s", text)
	}
	if got := strings.Count(text, "origin"); got != engine.LevelCount {
		t.Errorf("Expected %d levels, got %d", engine.LevelCount, got)
	}
}

func TestClient_listConfigs(t *testing.T) {
	api, server := newMockAPI(t)
	api.on("GET", "/api/configs", []*service.ConfigInfo{
		{Filename: "classic.yaml", ConfigID: "classic", Name: "Classic", Description: "Six rooms", StartLevel: 8, Levels: 6, TickRateHz: 100},
	})

	client := NewClient(server.URL)

	result, err := client.handleListConfigs(context.Background(), callTool("list_configs", nil))
	if err != nil {
		t.Fatalf("handleListConfigs failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"classic - Classic", "Six rooms", "start level 8, 6 authored levels, 100 Hz"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got:\n%s", want, text)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", nil))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"SOKOBLIT",
		"OBJECTIVE",
		"MODES",
		"A move takes 25 ticks",
		"GRID LEGEND",
		"until_idle",
	}
	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected instructions to contain %q", content)
		}
	}
}

func TestRenderTiles(t *testing.T) {
	tests := []struct {
		name   string
		view   *engine.View
		expect []string
	}{
		{
			name:   "player drawn over home",
			view:   testView(),
			expect: []string{"#########", "#P  $  .#", "#   #   #", "#########"},
		},
		{
			name:   "no player",
			view:   &engine.View{Tiles: roomTiles("#.$#")},
			expect: []string{"#.$#"},
		},
		{
			name:   "empty room",
			view:   &engine.View{Tiles: roomTiles()},
			expect: nil,
		},
		{
			name: "out of bounds cells",
			view: &engine.View{Tiles: [][]int{
				{int(engine.TileOutOfBounds), int(engine.TileOutOfBounds)},
				{int(engine.TileOutOfBounds), int(engine.TileOutOfBounds)},
			}},
			expect: []string{"?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderTiles(tt.view)
			if len(got) != len(tt.expect) {
				t.Fatalf("Expected %d rows, got %d: %q", len(tt.expect), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expect[i] {
					t.Errorf("Row %d: expected %q, got %q", i, tt.expect[i], got[i])
				}
			}
		})
	}
}
