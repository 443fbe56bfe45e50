package core

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// DefaultPositivePhrases are the canned reassurance phrases a reply must contain one of
var DefaultPositivePhrases = []string{
	"Thank you for bringing this to our attention",
	"We appreciate your feedback",
	"We're committed to finding a solution",
	"We look forward to working together",
	"We're excited to address this",
	"We value your input",
	"We're confident we can resolve this",
	"We're happy to help",
	"We're glad to assist",
	"We're here to support you",
}

// relevancePrefix opens the sentence injected by the relevance check
const relevancePrefix = "Regarding your message about "

// relevanceWords is how many leading summary words the relevance check looks for
const relevanceWords = 5

// FormatRules are the token and phrase tables used to post-process replies
type FormatRules struct {
	Greetings       []string
	DefaultGreeting string
	Closings        []string
	DefaultClosing  string
	PositivePhrases []string
	RelevanceCheck  bool
}

// DefaultFormatRules is the reference rule set. The relevance check is off.
var DefaultFormatRules = FormatRules{
	Greetings:       []string{"Dear", "Hello"},
	DefaultGreeting: "Dear Team,\n\n",
	Closings:        []string{"Best regards,", "Regards,"},
	DefaultClosing:  "\n\nBest regards,",
	PositivePhrases: DefaultPositivePhrases,
	RelevanceCheck:  false,
}

// ResponseFormatter turns raw generated text into an email-shaped reply.
// Applying Format to its own output returns the output unchanged.
type ResponseFormatter struct {
	rules FormatRules
}

// NewResponseFormatter creates a new response formatter
func NewResponseFormatter(rules FormatRules) *ResponseFormatter {
	return &ResponseFormatter{rules: rules}
}

// Format applies every post-processing step in order
func (f *ResponseFormatter) Format(raw, summary string) string {
	text := strings.TrimSpace(raw)
	text = f.EnsureGreeting(text)
	text = f.EnsureClosing(text)
	text = f.TrimIncompleteSentence(text)
	text = f.EnsurePositiveTone(text)
	if f.rules.RelevanceCheck {
		text = f.EnsureRelevance(text, summary)
	}
	return text
}

// EnsureGreeting prepends the default greeting block unless a greeting token opens the text
func (f *ResponseFormatter) EnsureGreeting(text string) string {
	if f.hasGreeting(text) {
		return text
	}
	return f.rules.DefaultGreeting + text
}

// EnsureClosing appends the default closing block unless a closing token ends the text
func (f *ResponseFormatter) EnsureClosing(text string) string {
	if f.hasClosing(text) {
		return text
	}
	return text + f.rules.DefaultClosing
}

// TrimIncompleteSentence drops whatever follows the last period of the body.
// The body sits between the greeting and the closing. A body without a period
// is left alone.
func (f *ResponseFormatter) TrimIncompleteSentence(text string) string {
	start := f.greetingEnd(text)
	end := f.closingStart(text)
	if start >= end {
		return text
	}

	body := text[start:end]
	trimmed := strings.TrimRightFunc(body, unicode.IsSpace)
	last := strings.LastIndexByte(trimmed, '.')
	if last < 0 || last == len(trimmed)-1 {
		return text
	}

	return text[:start] + trimmed[:last+1] + body[len(trimmed):] + text[end:]
}

// EnsurePositiveTone injects the first positive phrase after the greeting when none is present
func (f *ResponseFormatter) EnsurePositiveTone(text string) string {
	if len(f.rules.PositivePhrases) == 0 || f.ContainsPositivePhrase(text) {
		return text
	}
	return f.insertAfterGreeting(text, f.rules.PositivePhrases[0]+f.sentenceEnd(text))
}

// EnsureRelevance injects an acknowledgment of the summary topic when none of
// the first summary words appear in the reply
func (f *ResponseFormatter) EnsureRelevance(text, summary string) string {
	words := leadingWords(summary, relevanceWords)
	if len(words) == 0 {
		return text
	}

	lower := strings.ToLower(text)
	if lo.SomeBy(words, func(w string) bool { return strings.Contains(lower, w) }) {
		return text
	}

	clause := firstClause(summary)
	if clause == "" {
		return text
	}
	return f.insertAfterGreeting(text, relevancePrefix+clause+f.sentenceEnd(text))
}

// ContainsPositivePhrase reports whether any positive phrase occurs, ignoring case
func (f *ResponseFormatter) ContainsPositivePhrase(text string) bool {
	lower := strings.ToLower(text)
	return lo.ContainsBy(f.rules.PositivePhrases, func(p string) bool {
		return strings.Contains(lower, strings.ToLower(p))
	})
}

func (f *ResponseFormatter) hasGreeting(text string) bool {
	return lo.ContainsBy(f.rules.Greetings, func(g string) bool {
		return strings.HasPrefix(text, g)
	})
}

func (f *ResponseFormatter) hasClosing(text string) bool {
	return lo.ContainsBy(f.rules.Closings, func(c string) bool {
		return strings.HasSuffix(text, c)
	})
}

// closingStart returns the offset of the closing block. A last line holding
// nothing but a sign-off ("Kind Regards,") is the closing block as a whole.
func (f *ResponseFormatter) closingStart(text string) int {
	for _, c := range f.rules.Closings {
		if !strings.HasSuffix(text, c) {
			continue
		}
		tokenStart := len(text) - len(c)
		lineStart := strings.LastIndexByte(text[:tokenStart], '\n') + 1
		if !strings.ContainsAny(text[lineStart:tokenStart], ".!?") {
			return lineStart
		}
		return tokenStart
	}
	return len(text)
}

// greetingEnd returns the offset right after the salutation, where injected
// sentences go. It never passes the closing block.
func (f *ResponseFormatter) greetingEnd(text string) int {
	limit := f.closingStart(text)

	if d := f.rules.DefaultGreeting; d != "" && strings.HasPrefix(text, d) && len(d) <= limit {
		return len(d)
	}
	if !f.hasGreeting(text) {
		return 0
	}

	if i := strings.IndexByte(text, '\n'); i >= 0 && i < limit {
		for i < limit && (text[i] == '\n' || text[i] == '\r') {
			i++
		}
		if i < limit {
			return i
		}
	}

	firstLine := text[:limit]
	if nl := strings.IndexByte(firstLine, '\n'); nl >= 0 {
		firstLine = firstLine[:nl]
	}
	if i := salutationEnd(firstLine); i >= 0 {
		return skipSpaces(text, i+1, limit)
	}
	return len(firstLine)
}

// sentenceEnd terminates an injected sentence. Without a period in the body it
// is "! " so the body stays free of periods.
func (f *ResponseFormatter) sentenceEnd(text string) string {
	body := text[f.greetingEnd(text):f.closingStart(text)]
	if strings.TrimSpace(body) == "" || strings.Contains(body, ".") {
		return ". "
	}
	return "! "
}

func (f *ResponseFormatter) insertAfterGreeting(text, sentence string) string {
	i := f.greetingEnd(text)
	if i > 0 && !unicode.IsSpace(rune(text[i-1])) {
		sentence = " " + sentence
	}
	return text[:i] + sentence + text[i:]
}

func skipSpaces(text string, i, limit int) int {
	for i < limit && text[i] == ' ' {
		i++
	}
	return i
}

// leadingWords returns up to n lower-cased words of text with punctuation stripped
func leadingWords(text string, n int) []string {
	words := lo.Map(strings.Fields(text), func(w string, _ int) string {
		return strings.ToLower(strings.TrimFunc(w, unicode.IsPunct))
	})
	words = lo.Compact(words)
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// titleAbbreviations may precede a name in a salutation ("Dear Mr. Smith,")
var titleAbbreviations = []string{"Mr", "Mrs", "Ms", "Dr", "Prof"}

// salutationEnd returns the offset of the punctuation that closes the
// salutation on a single-line reply, or -1
func salutationEnd(line string) int {
	for i, r := range line {
		switch r {
		case ',', '!', '?', ':':
			return i
		case '.':
			words := strings.Fields(line[:i])
			if len(words) == 0 || !lo.Contains(titleAbbreviations, words[len(words)-1]) {
				return i
			}
		}
	}
	return -1
}

// firstClause returns text up to the first clause separator
func firstClause(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ",;:.!?\n"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
