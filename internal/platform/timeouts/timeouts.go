// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between the server, the session
// store, and client helpers, and makes the durations discoverable.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing the auth gRPC endpoint.
const GRPCDial = 2 * time.Second

// GRPCRequest caps the time allowed for a single client gRPC request.
const GRPCRequest = 2 * time.Second

// StorePing caps the startup connectivity check against the session store.
const StorePing = 2 * time.Second

// Shutdown limits how long the server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second
