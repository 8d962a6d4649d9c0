// Package timeouts defines shared timeout constants used across binaries.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing the ledger service, health check
// included.
const GRPCDial = 2 * time.Second

// GRPCRequest caps a single ledger call made by sleepctl.
const GRPCRequest = 5 * time.Second

// Shutdown limits how long the ledger server waits for in-flight calls
// during graceful shutdown.
const Shutdown = 5 * time.Second
