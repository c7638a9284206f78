// Package errmsg provides enhanced error message formatting with actionable suggestions.
package errmsg

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/version"
)

// Suggester is implemented by errors that know how the operator can
// recover from them.
type Suggester interface {
	Suggestion() string
}

// ErrorContext provides additional context for error formatting
type ErrorContext struct {
	Release   string // The release being installed, if known
	Workspace string // The workspace root, for permission hints
}

// Format returns a formatted error message with possible causes and suggestions.
// The context parameter is optional - pass nil for generic formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	errMsg := err.Error()

	// Structured errors from the version package carry a type.
	var resolverErr *version.ResolverError
	if errors.As(err, &resolverErr) {
		return formatResolverError(err, resolverErr, ctx)
	}

	var cmdErr *shell.CommandError
	if errors.As(err, &cmdErr) {
		return formatCommandError(errMsg, cmdErr)
	}

	var suggester Suggester
	if errors.As(err, &suggester) {
		if s := suggester.Suggestion(); s != "" {
			return errMsg + "\n\nSuggestions:\n  - " + s + "\n"
		}
	}

	// Check for rate limit errors (string matching for unstructured errors)
	if isRateLimitError(errMsg) {
		return formatRateLimitError(errMsg)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return formatNetworkError(netErr)
	}

	if isNetworkError(errMsg) {
		return formatGenericNetworkError(errMsg)
	}

	if isNotFoundError(errMsg) {
		return formatNotFoundError(errMsg, ctx)
	}

	if isPermissionError(errMsg) {
		return formatPermissionError(errMsg, ctx)
	}

	// Return original error for unrecognized types
	return errMsg
}

func formatResolverError(full error, err *version.ResolverError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(full.Error())
	sb.WriteString("\n")

	switch err.Type {
	case version.ErrTypeNetwork, version.ErrTypeTimeout, version.ErrTypeDNS, version.ErrTypeConnection, version.ErrTypeTLS:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - gitlab.cern.ch temporarily unavailable\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Check your internet connection\n")
		if s := err.Suggestion(); s != "" && s != "Check your internet connection and try again" {
			sb.WriteString("  - " + s + "\n")
		}
		sb.WriteString("  - Pass --version to skip the tag listing\n")

	case version.ErrTypeRateLimit:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - GitHub API rate limit exceeded\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Set GITHUB_TOKEN to increase rate limit\n")
		sb.WriteString("  - Use --tag-source gitlab\n")

	case version.ErrTypeNotFound:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The release does not exist\n")
		sb.WriteString("  - The release has no published source archive\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Run 'g4install versions' to see available releases\n")
		if ctx != nil && ctx.Release != "" {
			sb.WriteString(fmt.Sprintf("  - Check the spelling of %s\n", ctx.Release))
		}

	case version.ErrTypeValidation:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - Invalid version format\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Versions look like 11.3.2 or 11.2\n")
		sb.WriteString("  - Run 'g4install versions' to see available releases\n")

	default:
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Try again in a few minutes\n")
		sb.WriteString("  - Pass --version to skip the tag listing\n")
	}

	return sb.String()
}

func formatCommandError(errMsg string, err *shell.CommandError) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	if out := strings.TrimSpace(err.Output); out != "" {
		sb.WriteString("\nLast output:\n")
		for _, line := range lastLines(out, 10) {
			sb.WriteString("  " + line + "\n")
		}
	}

	sb.WriteString("\nPossible causes:\n")
	if err.ExitCode < 0 {
		sb.WriteString("  - The program is not installed or not on PATH\n")
	} else {
		sb.WriteString("  - A required development package is missing\n")
		sb.WriteString("  - The build ran out of memory with too many cores\n")
	}

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Install the packages listed by 'g4install packages'\n")
	sb.WriteString("  - Re-run with fewer cores, e.g. --cores 2\n")
	sb.WriteString("  - Re-run g4install; the downloaded archive and source tree are reused\n")

	return sb.String()
}

func lastLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

func formatRateLimitError(errMsg string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Too many requests to the API\n")
	sb.WriteString("  - Unauthenticated requests have lower limits\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Set GITHUB_TOKEN environment variable to increase rate limit\n")
	sb.WriteString("  - Wait a few minutes before retrying\n")
	sb.WriteString("  - Use 'g4install --version <release>' to specify a release directly\n")

	return sb.String()
}

func formatNetworkError(err net.Error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	if err.Timeout() {
		sb.WriteString("  - Request timed out\n")
		sb.WriteString("  - Slow or unstable network connection\n")
	} else {
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - DNS resolution failure\n")
	}
	sb.WriteString("  - Firewall or proxy blocking the connection\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")
	if err.Timeout() {
		sb.WriteString("  - Check if you're behind a slow proxy\n")
	}

	return sb.String()
}

func formatGenericNetworkError(errMsg string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Network connectivity issue\n")
	sb.WriteString("  - DNS resolution failure\n")
	sb.WriteString("  - Service temporarily unavailable\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatNotFoundError(errMsg string, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The release archive is not published\n")
	sb.WriteString("  - A required file is missing from the workspace\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Run 'g4install versions' to see available releases\n")
	if ctx != nil && ctx.Workspace != "" {
		sb.WriteString(fmt.Sprintf("  - Check the contents of %s\n", ctx.Workspace))
	}

	return sb.String()
}

func formatPermissionError(errMsg string, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Insufficient permissions on the workspace directory\n")
	sb.WriteString("  - File or directory owned by different user\n")

	sb.WriteString("\nSuggestions:\n")
	if ctx != nil && ctx.Workspace != "" {
		sb.WriteString(fmt.Sprintf("  - Ensure you own the workspace: ls -la %s\n", ctx.Workspace))
	} else {
		sb.WriteString("  - Ensure you own the workspace directory\n")
	}
	sb.WriteString("  - Choose another location with --workspace\n")

	return sb.String()
}

// isRateLimitError checks if the error message indicates a rate limit
func isRateLimitError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate-limit") ||
		strings.Contains(lower, "too many requests")
}

// isNetworkError checks if the error message indicates a network issue
func isNetworkError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "network is unreachable") ||
		strings.Contains(lower, "dial tcp") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "i/o timeout")
}

// isNotFoundError checks if the error message indicates something not found
func isNotFoundError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "not found") ||
		strings.Contains(lower, "404") ||
		strings.Contains(lower, "does not exist")
}

// isPermissionError checks if the error message indicates a permission issue
func isPermissionError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "operation not permitted")
}
