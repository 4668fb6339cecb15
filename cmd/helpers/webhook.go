package helpers

import (
	"fmt"
	"time"

	"github.com/verdict-ci/verdict/cmd/config"
	contextparser "github.com/verdict-ci/verdict/internal/context"
	"github.com/verdict-ci/verdict/internal/webhook"
)

// BuildWebhookConfig builds webhook configuration from all sources.
// Precedence: env < file < json < kv < direct flags.
func BuildWebhookConfig(cfg *config.WebhookConfig) (map[string]any, error) {
	result, err := contextparser.BuildContextWithPrefix(
		"VERDICT_WEBHOOK",
		cfg.Config,
		cfg.ConfigKV,
		cfg.ConfigFile,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook config: %w", err)
	}

	if result == nil {
		result = make(map[string]any)
	}

	webhookConf, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("webhook config must be an object/map")
	}

	// Explicit flag values win when they differ from their defaults
	if cfg.URL != "" {
		webhookConf["url"] = cfg.URL
	}
	if cfg.Method != "" && cfg.Method != "POST" {
		webhookConf["method"] = cfg.Method
	}
	if cfg.AuthType != "" && cfg.AuthType != "none" {
		webhookConf["auth_type"] = cfg.AuthType
	}
	if cfg.AuthToken != "" {
		webhookConf["auth_token"] = cfg.AuthToken
	}
	if cfg.Timeout != "" && cfg.Timeout != "30s" {
		webhookConf["timeout"] = cfg.Timeout
	}
	if cfg.Retries != 3 {
		webhookConf["retries"] = cfg.Retries
	}
	if cfg.RetryDelay != "" && cfg.RetryDelay != "1s" {
		webhookConf["retry_delay"] = cfg.RetryDelay
	}

	return webhookConf, nil
}

// ParseWebhookConfigToInternal converts the built webhook config map to the
// internal webhook structures. Returns nils when no webhook is configured.
func ParseWebhookConfigToInternal(cfg *config.WebhookConfig) (*webhook.Config, *webhook.RetryConfig, error) {
	configMap, err := BuildWebhookConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	url, _ := configMap["url"].(string)
	if url == "" {
		return nil, nil, nil
	}

	var webhookTimeoutDur time.Duration = 30 * time.Second
	if timeout, ok := configMap["timeout"].(string); ok && timeout != "" {
		webhookTimeoutDur, err = time.ParseDuration(timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid webhook timeout duration: %w", err)
		}
	}

	var retryDelay time.Duration = 1 * time.Second
	if delay, ok := configMap["retry_delay"].(string); ok && delay != "" {
		retryDelay, err = time.ParseDuration(delay)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid webhook retry delay: %w", err)
		}
	}

	method, _ := configMap["method"].(string)
	if method == "" {
		method = "POST"
	}

	authType, _ := configMap["auth_type"].(string)
	if authType == "" {
		authType = "none"
	}
	authToken, _ := configMap["auth_token"].(string)

	// Retries arrive as int from flags or float64 from JSON
	maxRetries := 3
	if r, ok := configMap["retries"].(int); ok {
		maxRetries = r
	} else if r, ok := configMap["retries"].(float64); ok {
		maxRetries = int(r)
	}

	webhookConfig := &webhook.Config{
		URL:       url,
		Method:    method,
		Timeout:   webhookTimeoutDur,
		AuthType:  authType,
		AuthToken: authToken,
	}

	retryConfig := &webhook.RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: retryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	return webhookConfig, retryConfig, nil
}
