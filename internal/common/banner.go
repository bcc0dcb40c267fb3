package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved endpoint
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("PolicyQA", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("endpoint", config.Endpoint.URL).
		Bool("raw_source_markup", config.Render.RawSourceMarkup).
		Msg("PolicyQA starting")
}
