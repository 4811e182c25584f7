package demo_configs

import (
	"embed"
)

// FS provides the embedded demo table configs.
//
//go:embed *.yaml
var FS embed.FS
