package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

const instruction = `You translate website copy for an immigration and work-permit services company.
Translate every value of the JSON object from %s to %s.
Keep the keys unchanged, keep placeholders such as {name} and URLs untouched,
and answer with a single JSON object of the same keys.`

// Translator implements translation.Translator with the Gemini API.
type Translator struct {
	client *genai.Client
	model  string
}

func NewTranslator(ctx context.Context, apiKey string, model string) (*Translator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Translator{client, model}, nil
}

func (t *Translator) Translate(ctx context.Context, from string, to string, texts map[string]string) (map[string]string, error) {
	if len(texts) == 0 {
		return map[string]string{}, nil
	}

	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			fmt.Sprintf(instruction, from, to), genai.RoleUser),
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(texts),
	}

	contents := []*genai.Content{
		genai.NewContentFromText(string(payload), genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini translate %s->%s: %w", from, to, err)
	}

	return Decode(resp.Text(), texts)
}

// ResponseSchema asks for an object with one string property per key.
func ResponseSchema(texts map[string]string) *genai.Schema {
	keys := make([]string, 0, len(texts))
	for key := range texts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	properties := make(map[string]*genai.Schema, len(keys))
	for _, key := range keys {
		properties[key] = &genai.Schema{Type: genai.TypeString}
	}

	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       properties,
		Required:         keys,
		PropertyOrdering: keys,
	}
}

// Decode parses a model answer, keeping only keys that were asked for.
func Decode(answer string, asked map[string]string) (map[string]string, error) {
	answer = strings.TrimSpace(answer)
	answer = strings.TrimPrefix(answer, "```json")
	answer = strings.TrimPrefix(answer, "```")
	answer = strings.TrimSuffix(answer, "```")

	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(answer)), &raw); err != nil {
		return nil, fmt.Errorf("invalid translation answer: %w", err)
	}

	result := make(map[string]string, len(asked))
	for key := range asked {
		v, ok := raw[key].(string)
		if !ok {
			continue
		}

		v = strings.TrimSpace(v)
		if v != "" {
			result[key] = v
		}
	}

	return result, nil
}
