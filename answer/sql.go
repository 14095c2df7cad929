package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/supplierx/poagent/structured"
	"github.com/supplierx/poagent/types"
)

const (
	generateQueryToolName        = "generate_sql_query"
	generateQueryToolDescription = "Produce a single read-only MySQL SELECT statement answering the user's question, or the literal NO_QUERY when the schema cannot answer it."

	noQueryMarker = "NO_QUERY"
)

// QueryRunner executes generated read-only queries against the reference
// datastore.
type QueryRunner interface {
	// SchemaDescription lists the exposed tables and their columns.
	SchemaDescription(ctx context.Context) (string, error)
	// RunSelect executes a SELECT and returns column names plus stringified rows.
	RunSelect(ctx context.Context, query string) ([]string, [][]string, error)
}

type generateQueryArgs struct {
	Query string `json:"query" jsonschema:"description=A single MySQL SELECT statement or NO_QUERY"`
}

type sqlPromptInput struct {
	question string
	schema   string
}

// SQLAnswerer turns a question into a SELECT via a tool-calling chat model,
// runs it, and renders the result as a markdown table. Every failure path
// degrades to the sentinel.
type SQLAnswerer struct {
	chain  *structured.Chain[sqlPromptInput, generateQueryArgs]
	runner QueryRunner
	logger *slog.Logger
}

func NewSQLAnswerer(chatModel model.ToolCallingChatModel, runner QueryRunner) (*SQLAnswerer, error) {
	chain, err := structured.NewChain[sqlPromptInput, generateQueryArgs](
		chatModel,
		buildQueryPrompt,
		generateQueryToolName,
		generateQueryToolDescription,
	)
	if err != nil {
		return nil, fmt.Errorf("create query chain: %w", err)
	}
	return &SQLAnswerer{chain: chain, runner: runner, logger: slog.Default()}, nil
}

func (a *SQLAnswerer) Answer(ctx context.Context, question string) (string, error) {
	schemaText, err := a.runner.SchemaDescription(ctx)
	if err != nil {
		a.logger.Debug("schema description failed", "err", err)
		return Sentinel + ". Please try asking differently.", nil
	}

	result, err := a.chain.Invoke(ctx, sqlPromptInput{question: question, schema: schemaText})
	if err != nil {
		a.logger.Debug("query generation failed", "err", err)
		return Sentinel + ". Please try asking differently.", nil
	}

	query := sanitizeQuery(result.Query)
	if query == "" {
		return Sentinel + ". Please try asking differently.", nil
	}

	columns, rows, err := a.runner.RunSelect(ctx, query)
	if err != nil {
		a.logger.Debug("query execution failed", "query", query, "err", err)
		return Sentinel + ". Please try asking differently.", nil
	}
	return types.FormatResultTable(columns, rows), nil
}

// sanitizeQuery strips markdown fences and enforces the SELECT-only guard.
// Returns "" when the model refused or produced anything but a SELECT.
func sanitizeQuery(raw string) string {
	query := strings.TrimSpace(raw)
	query = strings.ReplaceAll(query, "```sql", "")
	query = strings.ReplaceAll(query, "```", "")
	query = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if query == "" || strings.Contains(query, noQueryMarker) {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(query), "select") {
		return ""
	}
	return query
}

func buildQueryPrompt(_ context.Context, input sqlPromptInput) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You are a SQL expert. Convert the user's question into a valid MySQL query and call %s with it.

Rules:
1. Use only SELECT statements. No INSERT, UPDATE, DELETE.
2. If the question cannot be answered with the schema, pass the literal %s.
3. Limit results to 10 rows unless the question specifies otherwise.
4. Never use SELECT *; select specific, relevant columns.
5. Use LIKE '%%...%%' for text searches.`, generateQueryToolName, noQueryMarker)

	userPrompt := strings.Join([]string{
		fmt.Sprintf("# Database schema:\n%s", input.schema),
		fmt.Sprintf("# User question:\n%s", input.question),
	}, "\n\n")

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}, nil
}
