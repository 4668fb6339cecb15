package helpers

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/verdict-ci/verdict/cmd/config"
	contextparser "github.com/verdict-ci/verdict/internal/context"
	"github.com/verdict-ci/verdict/internal/output"
	"github.com/verdict-ci/verdict/internal/upload"
)

// BuildUploadConfig builds upload configuration from all sources
func BuildUploadConfig(cfg *config.UploadConfig) (map[string]any, error) {
	result, err := contextparser.BuildContextWithPrefix(
		"VERDICT_UPLOAD_CONFIG",
		cfg.Config,
		cfg.ConfigKV,
		cfg.ConfigFile,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload config: %w", err)
	}

	if result == nil {
		return make(map[string]any), nil
	}

	if m, ok := result.(map[string]any); ok {
		return m, nil
	}

	return nil, fmt.Errorf("upload config must be an object/map")
}

// SetupUploadProvider creates and configures an upload provider
func SetupUploadProvider(cfg *config.UploadConfig) (upload.Provider, map[string]any, error) {
	if cfg.Provider == "" {
		return nil, nil, nil
	}

	uploadConf, err := BuildUploadConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build upload config: %w", err)
	}

	provider, err := upload.NewProvider(cfg.Provider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create upload provider: %w", err)
	}

	if err := provider.Configure(uploadConf); err != nil {
		return nil, nil, fmt.Errorf("failed to configure upload provider: %w", err)
	}

	return provider, uploadConf, nil
}

// UploadReport pushes the serialized report to the provider under remotePath
func UploadReport(provider upload.Provider, report *output.Report, remotePath string, verbose bool) error {
	if provider == nil {
		return nil
	}

	if remotePath == "" {
		remotePath = report.Name + "-report.json"
	}

	data, err := report.Marshal()
	if err != nil {
		return err
	}

	if err := provider.Upload(context.Background(), bytes.NewReader(data), remotePath); err != nil {
		return fmt.Errorf("failed to upload report to %s: %w", remotePath, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Report uploaded to: %s\n", remotePath)
	}
	return nil
}

// PrintUploadInfo prints upload configuration in verbose mode
func PrintUploadInfo(provider upload.Provider, config map[string]any, remotePath string) {
	fmt.Fprintln(os.Stderr, "========================================")
	fmt.Fprintln(os.Stderr, "Upload Configuration")
	fmt.Fprintln(os.Stderr, "========================================")
	fmt.Fprintf(os.Stderr, "Provider:       %s\n", provider.Name())

	if provider.Name() == "minio" {
		if endpoint, ok := config["endpoint"]; ok {
			fmt.Fprintf(os.Stderr, "Endpoint:       %v\n", endpoint)
		}
		if bucket, ok := config["bucket"]; ok {
			fmt.Fprintf(os.Stderr, "Bucket:         %v\n", bucket)
		}
		if prefix, ok := config["prefix"]; ok && prefix != "" {
			fmt.Fprintf(os.Stderr, "Prefix:         %v\n", prefix)
		}
	}

	fmt.Fprintf(os.Stderr, "Report Path:    %s\n", remotePath)
	fmt.Fprintln(os.Stderr, "----------------------------------------")
}
