package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// comparePromptTemplate pins the sentinel phrase the classifier keys on;
// changing the wording here breaks the no-change detection downstream.
const comparePromptTemplate = `You are an expert document comparison assistant. Compare Section A (Original) with Section B (New).
Focus ONLY on substantive changes (additions, deletions, modifications in values, dates, obligations, wording affecting meaning).
Ignore minor formatting or punctuation changes unless they change meaning.
If sections are substantially similar with no meaningful changes, state "No significant changes detected.".
If different, provide a brief bulleted list summarizing ONLY the key differences. Start each bullet with '* '. Keep the summary concise.

Section A (Original):
` + "```\n%s\n```" + `

Section B (New):
` + "```\n%s\n```" + `

Differences Summary:`

type ClientConfig struct {
	EmbedModel    string
	SummaryModel  string
	Timeout       time.Duration
	MaxInputChars int
}

// Client binds a provider to the two narrow contracts the comparison core
// consumes: section embedding and pair summarization.
type Client struct {
	provider IProvider
	cfg      ClientConfig
}

func NewClient(provider IProvider, cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = 16000
	}
	return &Client{provider: provider, cfg: cfg}
}

func (c *Client) EmbedModel() string {
	return c.cfg.EmbedModel
}

// Embed returns the embedding vector for text. Empty input is the caller's
// responsibility to skip and is rejected here; a degenerate upstream
// response (no values) is an error as well.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embed input is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	vector, err := c.provider.Embed(ctx, c.cfg.EmbedModel, c.clip(text))
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("embed: provider returned empty vector")
	}
	return vector, nil
}

// Summarize narrates the differences between two section texts. The
// prompt instructs the model to answer with the exact no-change sentinel
// when the sections are equivalent.
func (c *Client) Summarize(ctx context.Context, textA, textB string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	prompt := fmt.Sprintf(comparePromptTemplate, c.clip(textA), c.clip(textB))
	narrative, err := c.provider.Generate(ctx, c.cfg.SummaryModel, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if strings.TrimSpace(narrative) == "" {
		return "", fmt.Errorf("summarize: provider returned empty narrative")
	}
	return narrative, nil
}

func (c *Client) clip(text string) string {
	if len(text) <= c.cfg.MaxInputChars {
		return text
	}
	return text[:c.cfg.MaxInputChars]
}
