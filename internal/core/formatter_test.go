package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseFormatter_EnsureGreeting(t *testing.T) {
	f := NewResponseFormatter(DefaultFormatRules)

	assert.Equal(t, "Hello John, thanks.", f.EnsureGreeting("Hello John, thanks."))
	assert.Equal(t, "Dear John, thanks.", f.EnsureGreeting("Dear John, thanks."))
	assert.Equal(t, "Dear Team,\n\nHi John, thanks.", f.EnsureGreeting("Hi John, thanks."))
	assert.Equal(t, "Dear Team,\n\n", f.EnsureGreeting(""))
}

func TestResponseFormatter_EnsureClosing(t *testing.T) {
	f := NewResponseFormatter(DefaultFormatRules)

	assert.Equal(t, "Thanks.\n\nBest regards,", f.EnsureClosing("Thanks.\n\nBest regards,"))
	assert.Equal(t, "Thanks.\nKind Regards,", f.EnsureClosing("Thanks.\nKind Regards,"))
	assert.Equal(t, "Thanks.\n\nBest regards,", f.EnsureClosing("Thanks."))
	assert.Equal(t, "Thanks.\nCheers\n\nBest regards,", f.EnsureClosing("Thanks.\nCheers"))
}

func TestResponseFormatter_TrimIncompleteSentence(t *testing.T) {
	f := NewResponseFormatter(DefaultFormatRules)

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "trailing fragment is dropped",
			text:     "Dear Team,\n\nWe will fix the delay. Thanks for your patience and\n\nBest regards,",
			expected: "Dear Team,\n\nWe will fix the delay.\n\nBest regards,",
		},
		{
			name:     "body ending with a period is kept",
			text:     "Dear Team,\n\nWe will fix the delay.\n\nBest regards,",
			expected: "Dear Team,\n\nWe will fix the delay.\n\nBest regards,",
		},
		{
			name:     "body without a period is kept",
			text:     "Dear Team,\n\nwe will look into it\n\nBest regards,",
			expected: "Dear Team,\n\nwe will look into it\n\nBest regards,",
		},
		{
			name:     "period in the greeting is ignored",
			text:     "Dear Mr. Smith,\nwe will call you\nBest regards,",
			expected: "Dear Mr. Smith,\nwe will call you\nBest regards,",
		},
		{
			name:     "multi-word sign-off line is preserved",
			text:     "Hello Ana,\nIt is fixed. See you\nKind Regards,",
			expected: "Hello Ana,\nIt is fixed.\nKind Regards,",
		},
		{
			name:     "generated positive phrase is part of the body",
			text:     "Dear Team,\n\nWe appreciate your feedback. Our team will\n\nBest regards,",
			expected: "Dear Team,\n\nWe appreciate your feedback.\n\nBest regards,",
		},
		{
			name:     "period closing a single-line salutation is not body",
			text:     "Dear team. We fixed it. And then Regards,",
			expected: "Dear team. We fixed it. Regards,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.TrimIncompleteSentence(tt.text))
		})
	}
}

func TestResponseFormatter_EnsurePositiveTone(t *testing.T) {
	f := NewResponseFormatter(DefaultFormatRules)

	t.Run("phrase present ignoring case", func(t *testing.T) {
		text := "Dear Team,\n\nwe APPRECIATE your feedback.\n\nBest regards,"
		assert.Equal(t, text, f.EnsurePositiveTone(text))
	})

	t.Run("first phrase injected after default greeting", func(t *testing.T) {
		text := "Dear Team,\n\nWe will fix it.\n\nBest regards,"
		assert.Equal(t,
			"Dear Team,\n\nThank you for bringing this to our attention. We will fix it.\n\nBest regards,",
			f.EnsurePositiveTone(text))
	})

	t.Run("first phrase injected after generated greeting line", func(t *testing.T) {
		text := "Hello John,\nThanks a lot. See you!\nRegards,"
		assert.Equal(t,
			"Hello John,\nThank you for bringing this to our attention. Thanks a lot. See you!\nRegards,",
			f.EnsurePositiveTone(text))
	})

	t.Run("body without a period gets no period", func(t *testing.T) {
		text := "Hello John,\nThanks a lot!\nRegards,"
		assert.Equal(t,
			"Hello John,\nThank you for bringing this to our attention! Thanks a lot!\nRegards,",
			f.EnsurePositiveTone(text))
	})

	t.Run("single line reply", func(t *testing.T) {
		text := "Dear John, we fixed it. Best regards,"
		assert.Equal(t,
			"Dear John, Thank you for bringing this to our attention. we fixed it. Best regards,",
			f.EnsurePositiveTone(text))
	})
}

func TestResponseFormatter_Format(t *testing.T) {
	f := NewResponseFormatter(DefaultFormatRules)

	raw := "  We will fix the delay. Thanks for your patience and  "
	assert.Equal(t,
		"Dear Team,\n\nThank you for bringing this to our attention. We will fix the delay.\n\nBest regards,",
		f.Format(raw, "The customer reports a delay."))
}

func TestResponseFormatter_Salutation(t *testing.T) {
	f := NewResponseFormatter(DefaultFormatRules)

	tests := []struct {
		raw      string
		expected string
	}{
		{
			raw:      "Hello! Thanks for the kind words.",
			expected: "Hello! Thank you for bringing this to our attention. Thanks for the kind words.\n\nBest regards,",
		},
		{
			raw:      "Dear team. We fixed it. And then Regards,",
			expected: "Dear team. Thank you for bringing this to our attention. We fixed it. Regards,",
		},
		{
			raw:      "Dear Mr. Smith, we will call.",
			expected: "Dear Mr. Smith, Thank you for bringing this to our attention. we will call.\n\nBest regards,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Format(tt.raw, ""))
		})
	}
}

func TestResponseFormatter_EnsureRelevance(t *testing.T) {
	rules := DefaultFormatRules
	rules.RelevanceCheck = true
	f := NewResponseFormatter(rules)

	t.Run("acknowledgment injected when summary words are missing", func(t *testing.T) {
		got := f.Format("We will respond soon.", "Project timeline concerns, communication issues between departments.")
		assert.Equal(t,
			"Dear Team,\n\nRegarding your message about Project timeline concerns. Thank you for bringing this to our attention. We will respond soon.\n\nBest regards,",
			got)
	})

	t.Run("nothing injected when a summary word appears", func(t *testing.T) {
		got := f.Format("We will review the timeline.", "Project timeline concerns, communication issues.")
		assert.Equal(t,
			"Dear Team,\n\nThank you for bringing this to our attention. We will review the timeline.\n\nBest regards,",
			got)
	})

	t.Run("empty summary is ignored", func(t *testing.T) {
		text := "Dear Team,\n\nWe value your input.\n\nBest regards,"
		assert.Equal(t, text, f.EnsureRelevance(text, "   "))
	})

	t.Run("disabled by default", func(t *testing.T) {
		plain := NewResponseFormatter(DefaultFormatRules)
		got := plain.Format("We will respond soon.", "Project timeline concerns.")
		assert.NotContains(t, got, "Regarding your message about")
	})
}

// rawGenerations covers typical and degenerate model output.
var rawGenerations = []string{
	"",
	"   ",
	"Hello",
	"We will fix the delay. Thanks for your patience and",
	"Hello John,\nThanks a lot!\nRegards,",
	"Dear John, we fixed it. Best regards,",
	"Dear Mr. Smith,\nwe will call you tomorrow",
	"Thank you so much for the kind words! We are thrilled. Our team will",
	"Dear all,\n\nWe're happy to help with the migration. Expect an update by Friday.\n\nBest regards,",
	"no punctuation at all in this reply",
	"Hi!\nWe hear you. The fix ships next week. Sorry for the",
	"Dear Team,\n\nRegarding the timeline. We agree. More soon\n\nKind Regards,",
	"We appreciate your feedback. Our team will",
	"Thank you for bringing this to our attention. Our team will",
	"Hello! Thanks for the kind words.",
	"Dear team. We fixed it. And then Regards,",
	"Hello,\n\nwe will look into it",
}

func TestResponseFormatter_Properties(t *testing.T) {
	for _, relevance := range []bool{false, true} {
		rules := DefaultFormatRules
		rules.RelevanceCheck = relevance
		f := NewResponseFormatter(rules)
		summary := "Concerns about the project timeline and communication issues."

		for _, raw := range rawGenerations {
			out := f.Format(raw, summary)

			assert.True(t, strings.HasPrefix(out, "Dear") || strings.HasPrefix(out, "Hello"),
				"greeting missing in %q", out)
			assert.True(t, strings.HasSuffix(out, "Best regards,") || strings.HasSuffix(out, "Regards,"),
				"closing missing in %q", out)
			assert.True(t, f.ContainsPositivePhrase(out), "positive phrase missing in %q", out)
			assert.Equal(t, out, f.Format(out, summary), "formatting is not a fixed point for %q", raw)
		}
	}
}

func TestResponseFormatter_EndsWithCompleteSentence(t *testing.T) {
	f := NewResponseFormatter(DefaultFormatRules)

	for _, raw := range []string{
		"We will fix the delay. Thanks for your patience and",
		"Thank you so much for the kind words! We are thrilled. Our team will",
		"Hi!\nWe hear you. The fix ships next week. Sorry for the",
		"We appreciate your feedback. Our team will",
		"Thank you for bringing this to our attention. Our team will",
		"Dear team. We fixed it. And then Regards,",
	} {
		out := f.Format(raw, "")
		body := strings.TrimSuffix(strings.TrimSuffix(out, "Best regards,"), "Regards,")
		body = strings.TrimRight(body, " \n")
		assert.True(t, strings.HasSuffix(body, "."), "body of %q ends mid-sentence", out)
		assert.NotContains(t, out, "Our team will")
	}
}
