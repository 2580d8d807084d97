package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/sokoblit/game/engine"
	"github.com/wricardo/sokoblit/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"SokoBlit",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`SokoBlit - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A SokoBlit world is a grid of up to 22 Sokoban rooms. Sessions start zooming
out; toggle to zoom into the highlighted room, then push crates ($) onto
crate homes (.). Time only moves when you advance it, unless the session was
created as realtime.

AVAILABLE TOOLS:
- create_session: Create a new session from a world config
- list_sessions: List active sessions
- get_view: Render the active room and the player state
- send_input: Feed one tick of input (direction and/or toggle)
- advance: Run several ticks, optionally until the player is idle
- reset_level: Restore a room to its authored layout
- list_levels: Show the level table and neighbours
- list_configs: List world configs
- game_instructions: Detailed rules

Call game_instructions first for the full rules.`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	sessionIDProp := map[string]interface{}{
		"type":        "string",
		"description": "Session ID returned by create_session",
	}
	directionProp := map[string]interface{}{
		"type":        "string",
		"enum":        []string{"up", "down", "left", "right"},
		"description": "Movement in play mode, room selection in overview mode",
	}
	toggleProp := map[string]interface{}{
		"type":        "boolean",
		"description": "Zoom in to the selected room or back out to the overview",
	}

	createSessionTool := mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session. Use list_configs to see available worlds.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "World config to load (e.g. 'classic', 'sandbox'). Omit for the server default.",
				},
				"realtime": map[string]interface{}{
					"type":        "boolean",
					"description": "Let the server tick the session at its configured rate",
				},
			},
		},
	}
	c.mcpServer.AddTool(createSessionTool, c.handleCreateSession)

	listSessionsTool := mcp.Tool{
		Name:        "list_sessions",
		Description: "List active game sessions, most recently used first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of sessions to return",
				},
			},
		},
	}
	c.mcpServer.AddTool(listSessionsTool, c.handleListSessions)

	getViewTool := mcp.Tool{
		Name:        "get_view",
		Description: "Render the active room of a session as text along with mode and player state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}
	c.mcpServer.AddTool(getViewTool, c.handleGetView)

	sendInputTool := mcp.Tool{
		Name:        "send_input",
		Description: "Apply one tick of input. A move takes 25 ticks to finish; use advance with until_idle to play it out.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"direction":  directionProp,
				"toggle":     toggleProp,
			},
			Required: []string{"session_id"},
		},
	}
	c.mcpServer.AddTool(sendInputTool, c.handleSendInput)

	advanceTool := mcp.Tool{
		Name:        "advance",
		Description: "Run ticks. Input is applied on the first tick only. With until_idle the session runs until the player stops and any zoom has finished.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"ticks": map[string]interface{}{
					"type":        "number",
					"description": "Number of ticks to run (default 1)",
				},
				"direction": directionProp,
				"toggle":    toggleProp,
				"until_idle": map[string]interface{}{
					"type":        "boolean",
					"description": "Keep ticking until nothing is moving",
				},
			},
			Required: []string{"session_id"},
		},
	}
	c.mcpServer.AddTool(advanceTool, c.handleAdvance)

	resetLevelTool := mcp.Tool{
		Name:        "reset_level",
		Description: "Restore a room's crates and player to the authored layout",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"level": map[string]interface{}{
					"type":        "number",
					"description": "Level id 1..22; omit for the active room",
				},
			},
			Required: []string{"session_id"},
		},
	}
	c.mcpServer.AddTool(resetLevelTool, c.handleResetLevel)

	listLevelsTool := mcp.Tool{
		Name:        "list_levels",
		Description: "List all rooms with their world origin and neighbours",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
	c.mcpServer.AddTool(listLevelsTool, c.handleListLevels)

	listConfigsTool := mcp.Tool{
		Name:        "list_configs",
		Description: "List available world configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
	c.mcpServer.AddTool(listConfigsTool, c.handleListConfigs)

	instructionsTool := mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of SokoBlit and how time, modes and pushes work",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
	c.mcpServer.AddTool(instructionsTool, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP call to the REST API
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %s", resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// arguments returns the tool arguments as a map, empty when none were sent
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok || args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func boolArg(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func intArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// inputBody validates direction and toggle and builds the REST payload
func inputBody(args map[string]interface{}) (map[string]interface{}, error) {
	direction := strings.ToLower(stringArg(args, "direction"))
	if d, ok := engine.ParseDirection(direction); !ok || (direction != "" && !d.Valid()) {
		return nil, fmt.Errorf("invalid direction %q: use up, down, left or right", direction)
	}

	body := map[string]interface{}{}
	if direction != "" {
		body["direction"] = direction
	}
	if boolArg(args, "toggle") {
		body["toggle"] = true
	}
	return body, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}
	if boolArg(args, "realtime") {
		body["realtime"] = true
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create session: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Session created: %s\n", session.ID)
	fmt.Fprintf(&sb, "Config: %s\n", session.ConfigName)
	if session.Realtime {
		sb.WriteString("Clock: realtime (the server ticks this session)\n")
	} else {
		sb.WriteString("Clock: manual (use advance or send_input)\n")
	}
	if session.View != nil {
		sb.WriteString("\n")
		sb.WriteString(formatView(session.View))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	path := "/api/sessions"
	if limit := intArg(args, "limit"); limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var resp struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall("GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list sessions: %v", err)), nil
	}

	if len(resp.Sessions) == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active sessions (%d of %d):\n\n", resp.Count, resp.Total)
	for _, s := range resp.Sessions {
		clock := "manual"
		if s.Realtime {
			clock = "realtime"
		}
		fmt.Fprintf(&sb, "• %s  config=%s  level=%d  mode=%s  tick=%d  clock=%s  last used %s\n",
			s.ID, s.ConfigName, s.Level, s.Mode, s.Tick, clock, s.LastAccessedAt.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var view engine.View
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/view", sessionID), nil, &view); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get view: %v", err)), nil
	}

	return mcp.NewToolResultText(formatView(&view)), nil
}

func (c *Client) handleSendInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	body, err := inputBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.StepResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/input", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send input: %v", err)), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	body, err := inputBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ticks := intArg(args, "ticks")
	if ticks < 0 || ticks > service.MaxAdvanceTicks {
		return mcp.NewToolResultError(fmt.Sprintf("ticks must be between 0 and %d", service.MaxAdvanceTicks)), nil
	}
	if ticks > 0 {
		body["ticks"] = ticks
	}
	if boolArg(args, "until_idle") {
		body["until_idle"] = true
	}

	var result service.StepResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/advance", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to advance: %v", err)), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleResetLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	body := map[string]interface{}{}
	if level := intArg(args, "level"); level != 0 {
		body["level"] = level
	}

	var resp struct {
		Message string       `json:"message"`
		View    *engine.View `json:"view"`
	}
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), body, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to reset level: %v", err)), nil
	}

	text := resp.Message + "\n"
	if resp.View != nil {
		text += "\n" + formatView(resp.View)
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []engine.LevelInfo
	if err := c.apiCall("GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list levels: %v", err)), nil
	}

	return mcp.NewToolResultText(formatLevels(levels)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []*service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list configs: %v", err)), nil
	}

	if len(configs) == 0 {
		return mcp.NewToolResultText("No configs found; sessions use the built-in world"), nil
	}

	var sb strings.Builder
	sb.WriteString("Available configs:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&sb, "• %s - %s\n", cfg.ConfigID, cfg.Name)
		if cfg.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", cfg.Description)
		}
		fmt.Fprintf(&sb, "  start level %d, %d authored levels, %d Hz\n", cfg.StartLevel, cfg.Levels, cfg.TickRateHz)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `SOKOBLIT - GAME INSTRUCTIONS

OBJECTIVE:
Push every crate ($) onto a crate home (.) in each room. There is no score
and no win screen; a crate coming to rest is reported as a crate_parked event.

WORLD:
• The world holds 22 rooms laid out on a grid
• Each room has its own player; leaving a room keeps its state
• list_levels shows every room and which room lies up/down/left/right of it

MODES:
• overview     - zoomed out over the whole world; directions pick a room
• to_play      - zooming into the selected room (100 ticks, input ignored)
• play         - inside a room; directions move the player
• to_overview  - zooming back out (100 ticks, input ignored)
• toggle switches between overview and play once a zoom has finished
• New sessions start zooming out, so advance 100 ticks before playing

TIME:
• Nothing happens between calls unless the session is realtime
• send_input applies one tick; advance runs several
• A move takes 25 ticks: one to start and 24 to animate
• Input sent while the player is still moving is ignored
• advance with until_idle runs until the player and the zoom have stopped

MOVEMENT RULES:
• Walls (#) block the player
• A crate can be pushed one tile if the tile behind it is floor or a home
• Crates cannot be pulled and two crates cannot be pushed together
• Bumping into something turns the player but does not move them

GRID LEGEND (get_view):
• P - player
• # - wall
• $ - crate
• . - crate home
• @ - player home (floor)
• space - floor
• - - blank (outside the room)

TYPICAL SESSION:
1. create_session
2. advance ticks=100 (finish the opening zoom out)
3. advance toggle=true until_idle=true (zoom into the selected room)
4. advance direction=right until_idle=true (one full move)
5. get_view to inspect the room
6. reset_level when a crate is stuck in a corner

Positions in get_view are in tiles relative to the room. Event positions
are reported in raw cells; one tile is 2 cells wide.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatters

var tileGlyphs = map[engine.TileType]byte{
	engine.TileBlank:       '-',
	engine.TileWall:        '#',
	engine.TileCrate:       '$',
	engine.TileEmpty:       ' ',
	engine.TileCrateHome:   '.',
	engine.TilePlayerHome:  '@',
	engine.TileOutOfBounds: '?',
}

// renderTiles draws one character per logical tile using the top-left cell
// of each 2x2 block, with the player on top.
func renderTiles(view *engine.View) []string {
	var player *engine.Point
	if view.Player != nil {
		p := engine.Point{X: view.Player.Location.X / engine.LogicalTile, Y: view.Player.Location.Y / engine.LogicalTile}
		player = &p
	}

	var rows []string
	for y := 0; y < len(view.Tiles); y += engine.LogicalTile {
		row := view.Tiles[y]
		line := make([]byte, 0, len(row)/engine.LogicalTile+1)
		for x := 0; x < len(row); x += engine.LogicalTile {
			if player != nil && player.X == x/engine.LogicalTile && player.Y == y/engine.LogicalTile {
				line = append(line, 'P')
				continue
			}
			glyph, ok := tileGlyphs[engine.TileType(row[x])]
			if !ok {
				glyph = '?'
			}
			line = append(line, glyph)
		}
		rows = append(rows, strings.TrimRight(string(line), "-"))
	}

	// Drop trailing blank rows
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func formatView(view *engine.View) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Tick: %d | Level: %d | Mode: %s", view.Tick, view.Level, view.Mode)
	if view.Mode == engine.ModeTransitionToPlay || view.Mode == engine.ModeTransitionToOverview {
		fmt.Fprintf(&sb, " (progress %d/%d)", view.Progress, engine.ProgressMax)
	}
	sb.WriteString("\n")

	if p := view.Player; p != nil {
		fmt.Fprintf(&sb, "Player: (%d,%d) facing %s", p.Location.X/engine.LogicalTile, p.Location.Y/engine.LogicalTile, p.Facing)
		switch {
		case p.Steps > 0 && p.Pushing:
			fmt.Fprintf(&sb, ", pushing (%d steps left)", p.Steps)
		case p.Steps > 0:
			fmt.Fprintf(&sb, ", moving (%d steps left)", p.Steps)
		case p.Blocked:
			sb.WriteString(", blocked")
		default:
			sb.WriteString(", idle")
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("Player: none in this room\n")
	}

	rows := renderTiles(view)
	if len(rows) == 0 {
		sb.WriteString("\n(room is empty)\n")
		return sb.String()
	}

	sb.WriteString("\nRoom:\n")
	for _, row := range rows {
		sb.WriteString(row)
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatEvent(e engine.Event) string {
	s := fmt.Sprintf("tick %d: %s", e.Tick, e.Type)
	if e.Level != 0 {
		s += fmt.Sprintf(" level=%d", e.Level)
	}
	if e.Direction != engine.DirNone {
		s += fmt.Sprintf(" direction=%s", e.Direction)
	}
	if e.Position != nil {
		s += fmt.Sprintf(" at=(%d,%d)", e.Position.X, e.Position.Y)
	}
	if e.Mode != nil {
		s += fmt.Sprintf(" mode=%s", *e.Mode)
	}
	return s
}

func formatStepResult(result *service.StepResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Ran %d tick(s), now at tick %d\n", result.Ticks, result.Tick)
	if result.Queued {
		sb.WriteString("Input queued for the realtime clock\n")
	}

	if len(result.Events) > 0 {
		sb.WriteString("\nEvents:\n")
		for _, e := range result.Events {
			sb.WriteString("• ")
			sb.WriteString(formatEvent(e))
			sb.WriteString("\n")
		}
	}

	if result.View != nil {
		sb.WriteString("\n")
		sb.WriteString(formatView(result.View))
	}
	return sb.String()
}

func formatLevels(levels []engine.LevelInfo) string {
	var sb strings.Builder
	sb.WriteString("Levels:\n\n")
	for _, l := range levels {
		fmt.Fprintf(&sb, "• %2d  origin (%d,%d)", l.ID, l.Origin.X, l.Origin.Y)

		dirs := make([]string, 0, len(l.Next))
		for dir := range l.Next {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		for _, dir := range dirs {
			fmt.Fprintf(&sb, "  %s=%d", dir, l.Next[dir])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
