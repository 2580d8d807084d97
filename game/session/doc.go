// Package session provides session storage and the realtime runner for
// SokoBlit.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//   - A realtime runner that ticks sessions at their configured rate
//
// Core Types:
//
// Manager stores service.Session values keyed by case-insensitive ID. Each
// session owns its own engine, built from the config and authored world
// passed in service.SessionOptions.
//
// Runner wakes up every few milliseconds, runs the ticks that are due for
// each realtime session and hands changed views to observers such as the
// websocket hub. Manual sessions are never touched by the runner; they only
// advance when a client asks.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters drawn from crypto/rand. Custom IDs may
// be anything without slashes or whitespace.
//
// Usage:
//
//	manager := session.NewManager()
//	runner := session.NewRunner(manager, hub)
//	go runner.Run(ctx)
//
//	sess, err := manager.Create("", service.SessionOptions{
//		ConfigID: "classic",
//		Config:   config,
//		World:    world,
//		Realtime: true,
//	})
package session
