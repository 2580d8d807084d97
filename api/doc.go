// Package api provides the HTTP REST API for SokoBlit.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic", "realtime": false})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET /api/sessions/{id} - Session details with the current view
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/view - Current render snapshot
//   - POST /api/sessions/{id}/input - One intent ({"direction": "up", "toggle": false});
//     manual sessions tick once, realtime sessions queue it for the next tick
//   - POST /api/sessions/{id}/advance - Run ticks ({"ticks": 24, "direction": "left",
//     "until_idle": true}); the intent applies to the first tick only
//   - POST /api/sessions/{id}/reset - Restart a level ({"level": 8}; omit for the active one)
//
// World Data:
//   - GET /api/levels - Level table with origins, centres and neighbours
//   - GET /api/configs - List world configurations
//   - POST /api/configs - Save a configuration
//   - GET /api/configs/{name} - Get one configuration
//
// Other:
//   - GET /health - Liveness check
//   - GET /ws?session={id} - WebSocket view updates
//
// Errors:
//
// Failures return {"error": "..."} with 404 for unknown sessions or
// configs, 409 for duplicate sessions, 400 for bad input and 500 otherwise.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
