package cmd

import (
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/abacus/internal/notes"
	"github.com/joescharf/abacus/internal/session"
)

// newExtractor creates a notes extractor from config/env. Replaced in tests.
var newExtractor = func() (notes.Extractor, error) {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, &session.ConfigError{Msg: "no Anthropic API key configured, run: abacus config set anthropic.api_key <key> (or set ANTHROPIC_API_KEY)"}
	}
	return notes.NewClient(apiKey, viper.GetString("anthropic.model")), nil
}
