package core

import (
	"context"
)

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.calls++
	return f.summary, f.err
}

type fakeClassifier struct {
	sentiment *Sentiment
	err       error
	calls     int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (*Sentiment, error) {
	f.calls++
	return f.sentiment, f.err
}

type fakeGenerator struct {
	output string
	err    error
	prompt string
	params GenerationParams
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	f.calls++
	f.prompt = prompt
	f.params = params
	return f.output, f.err
}
