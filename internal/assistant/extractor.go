package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/memory"
)

const memoryPrompt = `You are a memory extraction engine.

From the message below, extract long-term personal preferences or facts.
Only extract things that would be useful later (preferences, dislikes, habits).

Return ONLY valid JSON in this exact format:
[
  {"key": "preference_or_fact", "value": "description"}
]

If nothing is worth remembering, return [].

Message:
%s`

// MemoryExtractor distills durable personal facts out of conversational text
// via the LLM collaborator.
type MemoryExtractor struct {
	chat   ChatCompletion
	logger logging.Logger
}

// NewMemoryExtractor constructs an extractor over the given chat client.
func NewMemoryExtractor(chat ChatCompletion, logger logging.Logger) *MemoryExtractor {
	return &MemoryExtractor{chat: chat, logger: logging.OrNop(logger)}
}

// Extract asks the LLM for facts worth remembering in text. Failures come
// back as an ExtractionError so the caller can log and discard them; memory
// extraction never blocks the request that triggered it.
func (x *MemoryExtractor) Extract(ctx context.Context, text string) ([]memory.Fact, error) {
	if x == nil || x.chat == nil {
		return nil, &coserrors.ExtractionError{Err: fmt.Errorf("extractor not initialized")}
	}

	response, err := x.chat.Complete(ctx, fmt.Sprintf(memoryPrompt, text))
	if err != nil {
		return nil, &coserrors.ExtractionError{Err: err}
	}

	facts, err := parseFacts(response)
	if err != nil {
		return nil, &coserrors.ExtractionError{Err: err}
	}
	return facts, nil
}

type factRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// parseFacts locates the outermost JSON array in raw and decodes it. Models
// wrap output in prose or markdown fences often enough that only the span
// between the first '[' and the last ']' is considered. Records missing a
// key or value are discarded.
func parseFacts(raw string) ([]memory.Fact, error) {
	content := strings.TrimSpace(raw)
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, nil
	}
	slice := content[start : end+1]

	var records []factRecord
	if err := json.Unmarshal([]byte(slice), &records); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(slice)
		if repairErr != nil {
			return nil, fmt.Errorf("parse facts: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &records); err != nil {
			return nil, fmt.Errorf("parse repaired facts: %w", err)
		}
	}

	facts := make([]memory.Fact, 0, len(records))
	for _, record := range records {
		key := strings.TrimSpace(record.Key)
		value := strings.TrimSpace(record.Value)
		if key == "" || value == "" {
			continue
		}
		facts = append(facts, memory.Fact{Key: key, Value: value})
	}
	return facts, nil
}
