package core

import (
	"strings"
)

// DefaultBriefThreshold is the positive confidence above which a brief reply is drafted
const DefaultBriefThreshold = 0.9

// PolicyRules are the labels and threshold used by the response policy
type PolicyRules struct {
	NegativeLabel  SentimentLabel
	PositiveLabel  SentimentLabel
	BriefThreshold float64
}

// DefaultPolicyRules returns the reference policy
func DefaultPolicyRules() PolicyRules {
	return PolicyRules{
		NegativeLabel:  LabelNegative,
		PositiveLabel:  LabelPositive,
		BriefThreshold: DefaultBriefThreshold,
	}
}

// ResponsePolicy maps a sentiment to a response decision
type ResponsePolicy struct {
	rules PolicyRules
}

// NewResponsePolicy creates a new response policy
func NewResponsePolicy(rules PolicyRules) *ResponsePolicy {
	return &ResponsePolicy{rules: rules}
}

// Decide is total: negative mail gets a detailed reply, very confident
// positive mail a brief one, everything else none.
func (p *ResponsePolicy) Decide(label SentimentLabel, score float64) ResponseDecision {
	switch {
	case strings.EqualFold(string(label), string(p.rules.NegativeLabel)):
		return ResponseDecision{NeedsResponse: true, ResponseType: ResponseDetailed}
	case strings.EqualFold(string(label), string(p.rules.PositiveLabel)) && score > p.rules.BriefThreshold:
		return ResponseDecision{NeedsResponse: true, ResponseType: ResponseBrief}
	default:
		return ResponseDecision{NeedsResponse: false, ResponseType: ResponseNone}
	}
}
