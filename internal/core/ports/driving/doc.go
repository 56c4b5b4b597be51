// Package driving defines interfaces that external actors (CLI, MCP) use
// to interact with core services. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
// Every operation takes the already-authenticated owner ID; token handling
// happens in the driving adapter through driven.AuthProvider.
//
// Implementations of these interfaces live in internal/core/services.
package driving
