package helpers

import "strings"

// ParseReportPath parses a report destination in the format "local[:remote]".
// With no colon the whole string is the local path when no upload provider is
// configured; with a provider and no colon, the path names the remote object
// only and nothing is persisted locally.
func ParseReportPath(path string, hasUploadProvider bool) (local, remote string) {
	parts := strings.SplitN(path, ":", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}

	path = strings.TrimSpace(path)
	if hasUploadProvider {
		return "", path
	}
	return path, ""
}
