package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envSource layers the process environment over a .env file.
type envSource struct {
	lookup func(string) (string, bool)
	dotenv map[string]string
}

func newEnvSource(dotenvPath string, lookup func(string) (string, bool)) (*envSource, error) {
	src := &envSource{lookup: lookup, dotenv: map[string]string{}}
	if dotenvPath == "" {
		return src, nil
	}
	vals, err := godotenv.Read(dotenvPath)
	switch {
	case err == nil:
		src.dotenv = vals
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config: read %s: %w", dotenvPath, err)
	}
	return src, nil
}

func (e *envSource) lookupKey(key string) (string, bool) {
	if v, ok := e.lookup(key); ok {
		return v, true
	}
	v, ok := e.dotenv[key]
	return v, ok
}

func (e *envSource) has(key string) bool {
	_, ok := e.lookupKey(key)
	return ok
}

func (e *envSource) get(key string) string {
	v, _ := e.lookupKey(key)
	return v
}

func (e *envSource) apply(cfg *Config) error {
	strs := map[string]*string{
		"STUDYPULSE_DB_DRIVER":    &cfg.Database.Driver,
		"STUDYPULSE_DB":           &cfg.Database.DSN,
		"STUDYPULSE_TIMEZONE":     &cfg.TimeZone,
		"STUDYPULSE_SECRET":       &cfg.Identity.Secret,
		"STUDYPULSE_TOKEN_PATH":   &cfg.Identity.TokenPath,
		"STUDYPULSE_HTTP_ADDR":    &cfg.Server.Addr,
		"STUDYPULSE_CORS_ORIGINS": &cfg.Server.AllowOrigins,
		"STUDYPULSE_LOG_LEVEL":    &cfg.Log.Level,
		"STUDYPULSE_LOG_FORMAT":   &cfg.Log.Format,
		"STUDYPULSE_CURRICULUM":   &cfg.Curriculum,
		"STUDYPULSE_LLM_PROVIDER": &cfg.LLM.Provider,

		"STUDYPULSE_LLM_ANTHROPIC_API_KEY":   &cfg.LLM.Anthropic.APIKey,
		"STUDYPULSE_LLM_ANTHROPIC_MODEL":     &cfg.LLM.Anthropic.Model,
		"STUDYPULSE_LLM_ANTHROPIC_BASE_URL":  &cfg.LLM.Anthropic.BaseURL,
		"STUDYPULSE_LLM_OPENAI_API_KEY":      &cfg.LLM.OpenAI.APIKey,
		"STUDYPULSE_LLM_OPENAI_MODEL":        &cfg.LLM.OpenAI.Model,
		"STUDYPULSE_LLM_OPENAI_BASE_URL":     &cfg.LLM.OpenAI.BaseURL,
		"STUDYPULSE_LLM_GEMINI_API_KEY":      &cfg.LLM.Gemini.APIKey,
		"STUDYPULSE_LLM_GEMINI_MODEL":        &cfg.LLM.Gemini.Model,
		"STUDYPULSE_LLM_OPENROUTER_API_KEY":  &cfg.LLM.OpenRouter.APIKey,
		"STUDYPULSE_LLM_OPENROUTER_MODEL":    &cfg.LLM.OpenRouter.Model,
		"STUDYPULSE_LLM_OPENROUTER_BASE_URL": &cfg.LLM.OpenRouter.BaseURL,
	}
	for key, dst := range strs {
		if v, ok := e.lookupKey(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	durations := map[string]*time.Duration{
		"STUDYPULSE_READ_TIMEOUT": &cfg.ReadTimeout,
		"STUDYPULSE_AUTH_TIMEOUT": &cfg.AuthTimeout,
		"STUDYPULSE_SESSION_TTL":  &cfg.Identity.TTL,
		"STUDYPULSE_LLM_TIMEOUT":  &cfg.LLM.Timeout,
	}
	for key, dst := range durations {
		v, ok := e.lookupKey(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
