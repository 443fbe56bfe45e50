package filter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/llm-email-agent/internal/core"
)

// ParseEmail reads an RFC 5322 message. Input without a recognizable header
// block is treated as a plain-text body.
func ParseEmail(raw []byte) (*core.Email, error) {
	if !looksLikeMessage(raw) {
		return &core.Email{
			Body:    string(raw),
			Headers: map[string][]string{},
		}, nil
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}
	if mr == nil {
		return nil, errors.New("failed to parse email message")
	}

	email := &core.Email{Headers: map[string][]string{}}
	readHeader(email, mr.Header)

	body, err := extractText(mr)
	if err != nil {
		return nil, err
	}
	email.Body = body

	return email, nil
}

func readHeader(email *core.Email, h mail.Header) {
	fields := h.Fields()
	for fields.Next() {
		key := fields.Key()
		email.Headers[key] = append(email.Headers[key], fields.Value())
	}

	if subject, err := h.Subject(); err == nil {
		email.Subject = subject
	} else {
		email.Subject = h.Get("Subject")
	}

	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		email.From = from[0].Address
	} else {
		email.From = h.Get("From")
	}

	if to, err := h.AddressList("To"); err == nil {
		for _, addr := range to {
			email.To = append(email.To, addr.Address)
		}
	}
}

// extractText concatenates the text/plain parts of a message. Attachments
// and other inline types are skipped.
func extractText(mr *mail.Reader) (string, error) {
	var text strings.Builder

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) || message.IsUnknownEncoding(err) {
				continue
			}
			if text.Len() > 0 {
				break
			}
			return "", fmt.Errorf("failed to read message part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, err := h.ContentType()
		if err != nil || !strings.HasPrefix(ct, "text/plain") {
			continue
		}

		body, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.Write(body)
	}

	return text.String(), nil
}

// looksLikeMessage reports whether raw starts with a header block holding
// at least one common message header
func looksLikeMessage(raw []byte) bool {
	known := map[string]bool{
		"from": true, "to": true, "subject": true, "date": true,
		"content-type": true, "message-id": true, "mime-version": true,
	}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			return false
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}
		name, _, found := strings.Cut(line, ":")
		if !found || strings.ContainsAny(name, " \t") {
			return false
		}
		if known[strings.ToLower(name)] {
			return true
		}
	}
	return false
}
