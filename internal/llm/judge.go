// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm screens papers with a chat model for the AI filter.
// Implements: screening prompt, YES/NO decision parsing, OpenAI-compatible
// model construction.
//
// A Judge is built once from the researcher's criteria and passed to the
// filter run. Any OpenAI-compatible server works as the model host,
// including a local Ollama or llama.cpp server.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/pdiddy/synoptic/pkg/types"
)

// DefaultMaxTokens bounds the reply; a decision needs one word.
const DefaultMaxTokens = 5

// Criteria describe what the researcher wants screened in.
type Criteria struct {
	// Persona is the role the model plays (e.g. "Senior Material Scientist").
	Persona string `json:"persona" yaml:"persona"`

	// Topic is the literature review subject.
	Topic string `json:"topic" yaml:"topic"`

	// Criteria lists the inclusion rules in free text.
	Criteria string `json:"criteria" yaml:"criteria"`
}

// Judge decides whether a paper is relevant.
type Judge interface {
	Judge(ctx context.Context, title, abstract string) (bool, error)
}

// ModelJudge asks a langchaingo model for a YES/NO decision.
type ModelJudge struct {
	model     llms.Model
	criteria  Criteria
	maxTokens int
}

// NewModelJudge wraps model. A persona left empty becomes "Researcher".
func NewModelJudge(model llms.Model, c Criteria, maxTokens int) *ModelJudge {
	if c.Persona == "" {
		c.Persona = "Researcher"
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &ModelJudge{model: model, criteria: c, maxTokens: maxTokens}
}

// NewOpenAIJudge connects to the OpenAI-compatible endpoint in cfg.
func NewOpenAIJudge(cfg types.AIConfig, c Criteria) (*ModelJudge, error) {
	if cfg.Model == "" {
		return nil, errors.New("ai model is not configured")
	}
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	return NewModelJudge(client, c, cfg.MaxTokens), nil
}

// Judge implements Judge.
func (j *ModelJudge) Judge(ctx context.Context, title, abstract string) (bool, error) {
	system, user := BuildPrompt(j.criteria, title, abstract)
	content := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(user)},
		},
	}

	resp, err := j.model.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithMaxTokens(j.maxTokens),
		llms.WithStopWords([]string{"\n"}),
	)
	if err != nil {
		return false, fmt.Errorf("generating decision: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, errors.New("model returned no choices")
	}
	return ParseDecision(resp.Choices[0].Content), nil
}

// BuildPrompt returns the system and user messages for one paper.
func BuildPrompt(c Criteria, title, abstract string) (system, user string) {
	system = fmt.Sprintf("You are a %s. Your task is to screen academic papers for a literature review on %q.\n"+
		"Criteria for inclusion: %s.\n"+
		"Reply ONLY with \"YES\" if the paper is relevant, or \"NO\" if it is not. Do not provide explanations.",
		c.Persona, c.Topic, c.Criteria)
	user = fmt.Sprintf("Paper Title: %s\nAbstract: %s\n\nIs this paper relevant based on the criteria? Reply YES or NO.",
		title, abstract)
	return system, user
}

// ParseDecision reports whether a reply approves the paper: any reply
// containing YES after upper-casing does.
func ParseDecision(reply string) bool {
	return strings.Contains(strings.ToUpper(strings.TrimSpace(reply)), "YES")
}
