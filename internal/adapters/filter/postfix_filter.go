package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-email-agent/internal/config"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/whitelist"
	"go.uber.org/zap"
)

// analysisErrorHeader carries the pipeline error when analysis failed
const analysisErrorHeader = "X-Email-Analysis-Error"

// maxSummaryHeaderChars bounds the summary header value
const maxSummaryHeaderChars = 200

// processTimeout bounds one pass through the pipeline for a message
const processTimeout = 2 * time.Minute

// deliverFunc re-injects a message into the mail system
type deliverFunc func(sender string, recipients []string, data []byte) error

// PostfixFilter is a Postfix content filter that tags mail with its analysis
type PostfixFilter struct {
	service        *core.EmailAgentService
	logger         *zap.Logger
	listenAddr     string
	server         *smtp.Server
	headers        config.HeaderNames
	bypass         *whitelist.Checker
	postfixAddr    string
	postfixPort    int
	postfixEnabled bool
	deliver        deliverFunc
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.EmailAgentService,
	logger *zap.Logger,
	serverCfg config.ServerConfig,
	bypass *whitelist.Checker,
) *PostfixFilter {
	f := &PostfixFilter{
		service:        service,
		logger:         logger,
		listenAddr:     serverCfg.ListenAddress,
		headers:        serverCfg.Headers,
		bypass:         bypass,
		postfixAddr:    serverCfg.Postfix.Address,
		postfixPort:    serverCfg.Postfix.Port,
		postfixEnabled: serverCfg.Postfix.Enabled,
	}
	f.deliver = f.sendToPostfix
	return f
}

// Start starts the SMTP listener
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail runs the pipeline for one email
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ProcessResult, error) {
	return f.service.Process(ctx, email.Body)
}

// handleMessage analyzes a raw message, prepends the analysis headers and re-injects it.
// Analysis failures never block delivery.
func (f *PostfixFilter) handleMessage(sender string, recipients []string, raw []byte) error {
	email, err := ParseEmail(raw)
	if err != nil {
		f.logger.Warn("Failed to parse message, delivering unchanged",
			zap.String("sender", sender),
			zap.Error(err))
		return f.forward(sender, recipients, raw)
	}
	if email.From == "" {
		email.From = sender
	}
	email.To = recipients

	if f.bypass != nil && f.bypass.IsWhitelisted(sender) {
		f.logger.Info("Sender domain bypasses analysis", zap.String("sender", sender))
		return f.forward(sender, recipients, raw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	result, analysisErr := f.ProcessEmail(ctx, email)
	if analysisErr != nil {
		f.logger.Error("Failed to analyze email",
			zap.String("sender", sender),
			zap.Error(analysisErr))
	}

	var tagged bytes.Buffer
	tagged.Write(f.analysisHeaders(result, analysisErr))
	tagged.Write(raw)

	if err := f.forward(sender, recipients, tagged.Bytes()); err != nil {
		return err
	}

	if result != nil {
		f.logger.Info("Processed email",
			zap.String("from", sender),
			zap.String("sentiment", string(result.Analysis.Label)),
			zap.Float64("score", result.Analysis.Score),
			zap.String("response_type", string(result.Decision.ResponseType)))
	}
	return nil
}

// analysisHeaders renders the header block prepended to a message
func (f *PostfixFilter) analysisHeaders(result *core.ProcessResult, analysisErr error) []byte {
	var b bytes.Buffer

	if analysisErr != nil || result == nil {
		msg := "analysis unavailable"
		if analysisErr != nil {
			msg = analysisErr.Error()
		}
		fmt.Fprintf(&b, "%s: %s\r\n", analysisErrorHeader, headerValue(msg))
		return b.Bytes()
	}

	fmt.Fprintf(&b, "%s: %s\r\n", f.headers.Sentiment, result.Analysis.Label)
	fmt.Fprintf(&b, "%s: %.4f\r\n", f.headers.Score, result.Analysis.Score)
	fmt.Fprintf(&b, "%s: %t\r\n", f.headers.NeedsResponse, result.Decision.NeedsResponse)
	fmt.Fprintf(&b, "%s: %s\r\n", f.headers.ResponseType, result.Decision.ResponseType)
	fmt.Fprintf(&b, "%s: %s\r\n", f.headers.Summary, headerValue(result.Analysis.Summary))

	return b.Bytes()
}

func (f *PostfixFilter) forward(sender string, recipients []string, data []byte) error {
	if !f.postfixEnabled {
		f.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
		return nil
	}
	if err := f.deliver(sender, recipients, data); err != nil {
		f.logger.Error("Failed to send email back to Postfix",
			zap.String("sender", sender),
			zap.Error(err))
		return err
	}
	return nil
}

// sendToPostfix re-injects the message on the configured Postfix port
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, data []byte) error {
	addr := net.JoinHostPort(f.postfixAddr, fmt.Sprint(f.postfixPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// headerValue folds a value onto one line, bounds its length and
// Q-encodes it when it is not plain ASCII
func headerValue(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	if r := []rune(v); len(r) > maxSummaryHeaderChars {
		v = string(r[:maxSummaryHeaderChars]) + "..."
	}
	return mime.QEncoding.Encode("utf-8", v)
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data reads the message and hands it to the filter
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}
	return s.filter.handleMessage(s.sender, s.recipients, raw)
}

// Logout ends the session
func (s *smtpSession) Logout() error {
	return nil
}
