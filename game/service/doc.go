// Package service provides the business logic layer for SokoBlit.
//
// The service package implements:
//   - Multi-session world management
//   - Configuration and world map loading
//   - Input delivery, manual stepping and level restarts
//   - Session lifecycle management
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages world configuration loading and validation.
// SessionObserver receives every new view, for push transports.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine behind a mutex; a tick,
// a reset or a view read is one critical section.
//
// Sessions come in two kinds. Manual sessions only move when a client sends
// input or asks to advance, which makes them deterministic. Realtime sessions
// are ticked by the session runner and inputs are queued for the next tick.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "classic", false)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Zoom in and walk right
//	result, err := gameService.Advance(ctx, sessionInfo.ID, service.AdvanceOptions{
//		Input:     engine.Input{Direction: engine.DirRight},
//		UntilIdle: true,
//	})
package service
