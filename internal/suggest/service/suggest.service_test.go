package service

import (
	"context"
	"testing"

	"inkwell/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLLM struct {
	calls []string
	reply string
	err   error
}

func (r *recordingLLM) Complete(_ context.Context, text string) (string, error) {
	r.calls = append(r.calls, text)
	return r.reply, r.err
}

func TestImprove_EmptyTextNeverCallsUpstream(t *testing.T) {
	llm := &recordingLLM{}
	_, err := NewSuggestService(llm).Improve(context.Background(), "")
	assert.True(t, apperror.Is(err, apperror.InvalidInput))
	assert.Empty(t, llm.calls)
}

func TestImprove(t *testing.T) {
	llm := &recordingLLM{reply: "Better."}
	got, err := NewSuggestService(llm).Improve(context.Background(), "better?")
	require.NoError(t, err)
	assert.Equal(t, "Better.", got)
	assert.Equal(t, []string{"better?"}, llm.calls)
}

func TestAsk(t *testing.T) {
	llm := &recordingLLM{reply: "Add a start date."}
	got, err := NewSuggestService(llm).Ask(context.Background(), "What is missing?", "Dear Jane")
	require.NoError(t, err)
	assert.Equal(t, "Add a start date.", got)
	assert.Equal(t, []string{"What is missing?\n\nDocument Content:\nDear Jane"}, llm.calls)
}

func TestAsk_BlankQuestion(t *testing.T) {
	llm := &recordingLLM{}
	_, err := NewSuggestService(llm).Ask(context.Background(), "   ", "Dear Jane")
	assert.True(t, apperror.Is(err, apperror.InvalidInput))
	assert.Empty(t, llm.calls)
}

func TestImprove_UpstreamFailurePassesThrough(t *testing.T) {
	upstream := apperror.Upstream("Failed to get AI suggestion", "rate limited", nil)
	_, err := NewSuggestService(&recordingLLM{err: upstream}).Improve(context.Background(), "x")
	assert.Same(t, upstream, err)
}
