package mcp

import "github.com/google/wire"

// ProviderSet MCP 层 ProviderSet
var ProviderSet = wire.NewSet(
	NewServer,
)
