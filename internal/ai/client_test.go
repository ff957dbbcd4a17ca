package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	lastPrompt string
	lastModel  string
	generate   string
	embed      []float32
	err        error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	f.lastModel = model
	f.lastPrompt = prompt
	return f.generate, f.err
}

func (f *fakeProvider) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	f.lastModel = model
	f.lastPrompt = text
	return f.embed, f.err
}

func newTestClient(provider IProvider) *Client {
	return NewClient(provider, ClientConfig{
		EmbedModel:    "embed-model",
		SummaryModel:  "summary-model",
		Timeout:       time.Second,
		MaxInputChars: 100,
	})
}

func TestClientEmbed(t *testing.T) {
	provider := &fakeProvider{embed: []float32{0.1, 0.2}}
	client := newTestClient(provider)

	vector, err := client.Embed(context.Background(), "some section text")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2}, vector)
	require.Equal(t, "embed-model", provider.lastModel)
}

func TestClientEmbedRejectsEmptyInput(t *testing.T) {
	client := newTestClient(&fakeProvider{embed: []float32{1}})
	_, err := client.Embed(context.Background(), "   ")
	require.Error(t, err)
}

func TestClientEmbedRejectsEmptyVector(t *testing.T) {
	client := newTestClient(&fakeProvider{embed: nil})
	_, err := client.Embed(context.Background(), "text")
	require.Error(t, err)
}

func TestClientClipsLongInput(t *testing.T) {
	provider := &fakeProvider{embed: []float32{1}}
	client := newTestClient(provider)

	_, err := client.Embed(context.Background(), strings.Repeat("a", 500))
	require.NoError(t, err)
	require.Len(t, provider.lastPrompt, 100)
}

func TestClientSummarizePromptCarriesSentinel(t *testing.T) {
	provider := &fakeProvider{generate: "* something changed"}
	client := newTestClient(provider)

	narrative, err := client.Summarize(context.Background(), "old text", "new text")
	require.NoError(t, err)
	require.Equal(t, "* something changed", narrative)
	require.Equal(t, "summary-model", provider.lastModel)
	require.Contains(t, provider.lastPrompt, "No significant changes detected.")
	require.Contains(t, provider.lastPrompt, "old text")
	require.Contains(t, provider.lastPrompt, "new text")
}

func TestClientSummarizeRejectsEmptyNarrative(t *testing.T) {
	client := newTestClient(&fakeProvider{generate: "  "})
	_, err := client.Summarize(context.Background(), "a", "b")
	require.Error(t, err)
}
