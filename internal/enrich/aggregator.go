// Package enrich gathers structured data about a tool from the external
// text-generation service. Six independent topical stages are issued
// concurrently; any stage may fail and simply contributes nothing.
package enrich

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ai-navigator/ingest-cli/pkg/perplexity"
)

const (
	stageMaxTokens   = 2000
	stageTemperature = 0.1
)

// Bundle accumulates per-stage field maps. Stages that failed hold an empty
// map; callers only ever see absence, never errors.
type Bundle struct {
	Stages map[string]map[string]any
}

// Merged flattens the bundle in declared stage order, later stages winning
// on field-name collisions.
func (b *Bundle) Merged() map[string]any {
	out := make(map[string]any)
	for _, stage := range stageOrder {
		for k, v := range b.Stages[stage] {
			out[k] = v
		}
	}
	return out
}

// FieldCount returns the number of distinct merged fields.
func (b *Bundle) FieldCount() int {
	return len(b.Merged())
}

// String returns the merged field as a string, or "".
func String(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Strings returns the merged field as a string slice, dropping non-string
// and blank members.
func Strings(fields map[string]any, key string) []string {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// Bool returns the merged field as a bool, false when absent or mistyped.
func Bool(fields map[string]any, key string) bool {
	b, _ := fields[key].(bool)
	return b
}

// Int returns the merged field as an int pointer, nil when absent.
func Int(fields map[string]any, key string) *int {
	switch v := fields[key].(type) {
	case float64:
		n := int(v)
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n
		}
	}
	return nil
}

// StringMap returns the merged field as a string map, e.g. social links.
func StringMap(fields map[string]any, key string) map[string]string {
	raw, ok := fields[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out[k] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Aggregator issues the enrichment stages against the generation service.
type Aggregator struct {
	llm perplexity.Client
}

// NewAggregator creates an Aggregator over the given chat-completions client.
func NewAggregator(llm perplexity.Client) *Aggregator {
	return &Aggregator{llm: llm}
}

// Enrich runs all stages concurrently and returns the accumulated bundle.
// Individual stage failures yield empty stage maps; Enrich itself never
// fails.
func (a *Aggregator) Enrich(ctx context.Context, name, canonicalURL string) *Bundle {
	bundle := &Bundle{Stages: make(map[string]map[string]any, len(stageOrder))}

	results := make([]map[string]any, len(stageOrder))
	g, gctx := errgroup.WithContext(ctx)
	for i, stage := range stageOrder {
		g.Go(func() error {
			results[i] = a.runStage(gctx, stage, name, canonicalURL)
			return nil
		})
	}
	_ = g.Wait()

	for i, stage := range stageOrder {
		bundle.Stages[stage] = results[i]
	}

	zap.L().Debug("enrich: bundle assembled",
		zap.String("name", name),
		zap.Int("fields", bundle.FieldCount()),
	)
	return bundle
}

// runStage sends one stage prompt and extracts its JSON answer. All failure
// modes collapse into an empty map.
func (a *Aggregator) runStage(ctx context.Context, stage, name, canonicalURL string) map[string]any {
	temp := stageTemperature
	maxTokens := stageMaxTokens

	resp, err := a.llm.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt(stage, name, canonicalURL)},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		zap.L().Warn("enrich: stage call failed",
			zap.String("stage", stage),
			zap.String("name", name),
			zap.Error(err),
		)
		return map[string]any{}
	}

	fields, err := ExtractJSONObject(resp.Content())
	if err != nil {
		zap.L().Warn("enrich: stage returned no parsable json",
			zap.String("stage", stage),
			zap.String("name", name),
			zap.Error(err),
		)
		return map[string]any{}
	}

	zap.L().Debug("enrich: stage complete",
		zap.String("stage", stage),
		zap.Int("fields", len(fields)),
	)
	return fields
}
