package service

import (
	"context"
	"strings"

	"inkwell/pkg/apperror"
)

// Completer returns the model's answer for a single user message.
type Completer interface {
	Complete(ctx context.Context, text string) (string, error)
}

type SuggestService struct {
	LLM Completer
}

func NewSuggestService(llm Completer) *SuggestService {
	return &SuggestService{LLM: llm}
}

// Improve asks for a rewrite of text. Empty text is rejected before any
// upstream call.
func (s *SuggestService) Improve(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", apperror.Invalid("No text provided")
	}
	return s.LLM.Complete(ctx, text)
}

// Ask sends a free-form question together with the document it is about.
func (s *SuggestService) Ask(ctx context.Context, question, content string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", apperror.Invalid("Please enter a question or request.")
	}
	return s.Improve(ctx, ComposeQuestion(question, content))
}

func ComposeQuestion(question, content string) string {
	return question + "\n\nDocument Content:\n" + content
}
