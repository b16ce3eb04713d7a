package config

// Build-time values injected via ldflags. EmbeddedAPIBase is used when no
// LACALE_API_BASE is configured.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/idkjsp/Lacale-check/internal/config.Version=1.2.0' \
//	                   -X 'github.com/idkjsp/Lacale-check/internal/config.EmbeddedAPIBase=https://tracker.example/api'"
var (
	Version         = "dev"
	EmbeddedAPIBase string
)
