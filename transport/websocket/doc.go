// Package websocket pushes SokoBlit views to browser and tool clients.
//
// Architecture:
//
// A central Hub owns every connection. Registration, removal and fan-out
// all run on the Hub's Run goroutine; each client has its own read and
// write pumps. The Hub implements service.SessionObserver, so the game
// service and the realtime runner publish through it directly.
//
// Message Protocol:
//
// Clients connect with ?session=<id> and receive one JSON message per
// frame:
//
//	{"session_id": "ab12", "event": "view_update", "view": {...}, "events": [...]}
//
// Input is not read from the socket; it goes through the REST API.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	gameService := service.NewGameService(sessions, configs, hub)
//	runner := session.NewRunner(sessions, hub)
//
// Backpressure:
//
// Publishing never blocks. When the broadcast queue is full the update is
// dropped, and a client whose send buffer is full is disconnected.
package websocket
