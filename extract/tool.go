package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"

	"github.com/supplierx/poagent/structured"
)

const (
	extractToolName        = "extract_order_request"
	extractToolDescription = "Emit RFC6902 JSON Patch operations filling the extraction document from the user's request. Only include operations for information the user explicitly stated."
)

type extractArgs struct {
	Ops []Operation `json:"ops" jsonschema:"description=Patch operations against the extraction document"`
}

// ToolBasedExtractor asks a tool-calling chat model for patch operations
// against the Guess schema and applies them to an empty document.
type ToolBasedExtractor struct {
	chain *structured.Chain[string, extractArgs]
}

func NewToolBasedExtractor(chatModel model.ToolCallingChatModel) (*ToolBasedExtractor, error) {
	chain, err := structured.NewChain[string, extractArgs](
		chatModel,
		buildExtractPrompt,
		extractToolName,
		extractToolDescription,
	)
	if err != nil {
		return nil, fmt.Errorf("create extraction chain: %w", err)
	}
	return &ToolBasedExtractor{chain: chain}, nil
}

func (e *ToolBasedExtractor) Extract(ctx context.Context, text string) (Guess, error) {
	result, err := e.chain.Invoke(ctx, text)
	if err != nil {
		return Guess{}, fmt.Errorf("LLM call failed: %w", err)
	}
	if result == nil {
		return Guess{}, nil
	}
	guess, err := applyOps(result.Ops)
	if err != nil {
		return Guess{}, fmt.Errorf("generated operations failed validation: %w", err)
	}
	return guess, nil
}

func buildExtractPrompt(_ context.Context, text string) ([]*schema.Message, error) {
	guessSchema := jsonschema.Reflect(&Guess{})
	guessSchema.Title = "Order request extraction"
	schemaJSON, err := json.Marshal(guessSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction schema: %w", err)
	}

	systemPrompt := fmt.Sprintf(`You are the intake assistant for a purchase-order system. Analyze the user's message and call %s with RFC6902 patch operations that fill the extraction document.

Rules:
- intent is "create_order" when the user wants to raise a purchase order, "question" when they ask about data, "other" otherwise.
- Only fill supplier, plant, material, order_type, or quantity when the user explicitly named them. Never guess.
- Values are raw text fragments; do not normalize names.
- If nothing can be extracted, return an empty operations list.`, extractToolName)

	userPrompt := strings.Join([]string{
		fmt.Sprintf("# Extraction document schema:\n```json\n%s\n```", string(schemaJSON)),
		fmt.Sprintf("# User message:\n%s", text),
	}, "\n\n")

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}, nil
}
