//go:build tools
// +build tools

// Package tools tracks tool dependencies that are required by the project
// but not directly imported by application code.
//
// swag generates the OpenAPI document from the handler annotations:
//
//	swag init -g cmd/api/main.go -o docs
package tools

import (
	_ "github.com/swaggo/swag/cmd/swag"
)
