//go:build tools

// Package tools pins build-time tool dependencies so `go mod tidy` does
// not prune them. The Transport/Codec mocks in pkg/discovery's tests are
// hand-written to the shape Mockery generates.
package tools

import (
	_ "github.com/vektra/mockery/v2"
)
