package whitelist

import (
	"net/mail"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Checker decides whether a sender's domain bypasses analysis
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new bypass domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := lo.Uniq(lo.Compact(lo.Map(domains, func(d string, _ int) string {
		return strings.ToLower(strings.TrimSpace(d))
	})))

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized bypass domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsWhitelisted reports whether the sender's domain is a bypass domain.
// Both bare addresses and "Name <addr>" forms are accepted.
func (c *Checker) IsWhitelisted(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := senderDomain(from)
	if domain == "" {
		return false
	}

	if lo.Contains(c.domains, domain) {
		if c.logger != nil {
			c.logger.Debug("Sender domain bypasses analysis",
				zap.String("domain", domain),
				zap.String("email", from))
		}
		return true
	}
	return false
}

// Domains returns the normalized bypass domains
func (c *Checker) Domains() []string {
	return c.domains
}

func senderDomain(from string) string {
	addr := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}

	at := strings.LastIndexByte(addr, '@')
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(addr[at+1:])
}
