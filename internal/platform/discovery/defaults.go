// Package discovery centralizes internal service-discovery conventions.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceLedger is the ledger gRPC service identity.
	ServiceLedger = "ledger"
)

var grpcPorts = map[string]int{
	ServiceLedger: 8095,
}

// DefaultGRPCPort returns the canonical gRPC port for a service, or 0.
func DefaultGRPCPort(service string) int {
	return grpcPorts[strings.TrimSpace(service)]
}

// LocalGRPCAddr returns the loopback gRPC address for a service.
func LocalGRPCAddr(service string) string {
	service = strings.TrimSpace(service)
	port := DefaultGRPCPort(service)
	if port <= 0 {
		return ""
	}
	return "localhost:" + strconv.Itoa(port)
}

// OrLocalGRPCAddr returns value when set, otherwise the loopback address of
// service. Tools running next to the service use it.
func OrLocalGRPCAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return LocalGRPCAddr(service)
}
