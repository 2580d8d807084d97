// Package mcp exposes SokoBlit to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API and the JSON answer is rendered back as text. Rooms are drawn one
// character per logical tile:
//
//	P player   # wall   $ crate   . crate home   @ player home
//
// Tools: create_session, list_sessions, get_view, send_input, advance,
// reset_level, list_levels, list_configs and game_instructions.
//
// The same server is reachable over stdio (server.ServeStdio) or through the
// /mcp HTTP endpoint registered in main.
package mcp
