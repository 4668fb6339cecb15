package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContextConfig holds report-context flags
type ContextConfig struct {
	JSON string
	KV   []string
	File string
}

// UploadConfig holds report-upload flags
type UploadConfig struct {
	Provider   string
	Config     string
	ConfigKV   []string
	ConfigFile string
}

// CommonFlags holds commonly used flags across commands
type CommonFlags struct {
	Verbose    bool
	TimeoutStr string
	Timeout    time.Duration
	ScoreStr   string
	Score      decimal.Decimal
	ScoreSet   bool
}

// WebhookConfig holds webhook-related flags
type WebhookConfig struct {
	// Direct configuration flags
	URL        string
	Method     string // HTTP method (GET, POST, PUT, PATCH, DELETE)
	AuthType   string
	AuthToken  string
	Timeout    string
	Retries    int
	RetryDelay string

	// Alternative configuration methods
	Config     string   // JSON string configuration
	ConfigKV   []string // Key-value pairs
	ConfigFile string   // Path to JSON config file
}
