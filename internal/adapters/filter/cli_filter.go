package filter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/llm-email-agent/internal/core"
	"go.uber.org/zap"
)

// CliFilter runs the pipeline for a single email and prints a report
type CliFilter struct {
	service *core.EmailAgentService
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.EmailAgentService, logger *zap.Logger, out io.Writer, verbose bool) *CliFilter {
	return &CliFilter{
		service: service,
		logger:  logger,
		out:     out,
		verbose: verbose,
	}
}

// ProcessEmail processes an email and prints the results
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ProcessResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Fprintf(f.out, "=== Email ===\n")
	if email.From != "" {
		fmt.Fprintf(f.out, "From: %s\n", email.From)
	}
	if email.Subject != "" {
		fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	}
	fmt.Fprintf(f.out, "Body length: %d characters\n", len([]rune(email.Body)))

	if f.verbose {
		preview := []rune(email.Body)
		if len(preview) > 500 {
			preview = append(preview[:500], []rune("...")...)
		}
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", string(preview))
	}

	result, err := f.service.Process(ctx, email.Body)
	if err != nil {
		f.logger.Error("Failed to process email", zap.Error(err))
		fmt.Fprintf(f.out, "\nError: %v\n", err)
		return nil, err
	}

	fmt.Fprintf(f.out, "\n=== Analysis ===\n")
	fmt.Fprintf(f.out, "Summary: %s\n", result.Analysis.Summary)
	fmt.Fprintf(f.out, "Sentiment: %s\n", result.Analysis.Label)
	fmt.Fprintf(f.out, "Confidence: %.4f\n", result.Analysis.Score)

	fmt.Fprintf(f.out, "\n=== Decision ===\n")
	fmt.Fprintf(f.out, "Needs response: %t\n", result.Decision.NeedsResponse)
	fmt.Fprintf(f.out, "Response type: %s\n", result.Decision.ResponseType)

	if result.Decision.NeedsResponse {
		fmt.Fprintf(f.out, "\n=== Generated Response ===\n%s\n", strings.TrimSpace(result.Response))
	}

	fmt.Fprintf(f.out, "\nProcessing time: %v\n", result.Duration)

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
