package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/mikey/llm-email-agent/internal/adapters/filter"
	"github.com/mikey/llm-email-agent/internal/config"
	"github.com/mikey/llm-email-agent/internal/di"
	"github.com/mikey/llm-email-agent/internal/factory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exampleEmail is processed by --example
const exampleEmail = `Dear Team,

I hope this email finds you well. I wanted to bring to your attention some concerns I have regarding the recent project timeline.
The current schedule seems unrealistic given the scope of work, and I'm worried we might not meet the deadline.
Additionally, there have been some communication issues between departments that are causing delays.

I would appreciate it if we could schedule a meeting to discuss these matters and find a way forward.

Best regards,
John
`

// analyzeTimeout bounds one pass through the pipeline
const analyzeTimeout = 5 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &di.CLIFlags{}

	cmd := &cobra.Command{
		Use:   "email-analyzer",
		Short: "Summarize an email, classify its sentiment and draft a reply",
		Long: `email-analyzer reads one email (an RFC 5322 message or plain text) from a
file or stdin, prints its summary and sentiment, decides whether it needs a
response and drafts one when it does.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			return analyze(cmd.Context(), flags, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.ConfigFile, "config", "", "config file (default searches ./config.yaml and /etc/llm-email-agent/)")
	cmd.Flags().StringVar(&flags.Provider, "provider", "", "model provider for every stage (huggingface, openai, gemini, bedrock)")
	cmd.Flags().StringVarP(&flags.InputFile, "file", "f", "", "input email file (stdin if not specified)")
	cmd.Flags().BoolVar(&flags.Example, "example", false, "process the built-in example email")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose logging")
	cmd.Flags().BoolVar(&flags.JSONLog, "json-log", false, "output logs in JSON format")

	return cmd
}

func analyze(ctx context.Context, flags *di.CLIFlags, stdin io.Reader, out io.Writer) error {
	raw, err := readInput(flags, stdin)
	if err != nil {
		return err
	}

	email, err := filter.ParseEmail(raw)
	if err != nil {
		return fmt.Errorf("failed to parse email: %w", err)
	}

	container, err := di.BuildCLIContainer(flags, out)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	// Reject oversized input before any model client is built
	if err := container.Invoke(func(cfg *config.Config) error {
		return checkLength(email.Body, cfg.GetPipeline().MaxInputChars)
	}); err != nil {
		return err
	}

	return container.Invoke(func(cli *filter.CliFilter, models *factory.ModelFactory, logger *zap.Logger) error {
		defer logger.Sync()
		defer func() {
			if err := models.Close(); err != nil {
				logger.Error("Failed to close model clients", zap.Error(err))
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, analyzeTimeout)
		defer cancel()

		_, err := cli.ProcessEmail(ctx, email)
		return err
	})
}

// checkLength rejects empty bodies and bodies longer than maxChars runes. A maxChars of zero disables the cap.
func checkLength(body string, maxChars int) error {
	if strings.TrimSpace(body) == "" {
		return errors.New("email body is empty")
	}
	if n := utf8.RuneCountInString(body); maxChars > 0 && n > maxChars {
		return fmt.Errorf("email body is %d characters, longer than the %d allowed (pipeline.max_input_chars)", n, maxChars)
	}
	return nil
}

// readInput returns the example email, the input file or stdin, in that order
func readInput(flags *di.CLIFlags, stdin io.Reader) ([]byte, error) {
	if flags.Example {
		return []byte(exampleEmail), nil
	}
	if flags.InputFile != "" {
		data, err := os.ReadFile(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}
