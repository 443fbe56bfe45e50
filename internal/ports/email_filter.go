package ports

import (
	"context"

	"github.com/mikey/llm-email-agent/internal/core"
)

// EmailFilter is a front end that feeds emails into the pipeline
type EmailFilter interface {
	// ProcessEmail runs the pipeline for one email
	ProcessEmail(ctx context.Context, email *core.Email) (*core.ProcessResult, error)

	// Start starts the front end
	Start() error

	// Stop stops the front end
	Stop() error
}
