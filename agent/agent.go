// Package agent ties the order-intake flow to session storage and exposes it
// both as a plain Chat API and as an adk.Agent for eino runners.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"

	"github.com/supplierx/poagent/dialogue"
)

var _ adk.Agent = (*Agent)(nil)

// Agent routes each turn to the session's conversation state, runs the flow,
// and writes the mutated state back.
type Agent struct {
	name        string
	description string
	flow        *dialogue.Flow
	store       StateReadWriter
	logger      *slog.Logger
}

type Option func(*Agent)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

func New(name, description string, flow *dialogue.Flow, store StateReadWriter, opts ...Option) *Agent {
	a := &Agent{
		name:        name,
		description: description,
		flow:        flow,
		store:       store,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Chat processes one user message for the session routed by the context and
// persists the updated state.
func (a *Agent) Chat(ctx context.Context, input string) (*dialogue.Response, error) {
	state, err := a.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session state: %w", err)
	}
	resp := a.flow.ProcessTurn(ctx, state, input)
	if err := a.store.Write(ctx, state); err != nil {
		return nil, fmt.Errorf("write session state: %w", err)
	}
	if resp.OrderNumber != "" {
		a.logger.Info("purchase order created", "order_number", resp.OrderNumber)
	}
	return resp, nil
}

// EndSession discards the session's state.
func (a *Agent) EndSession(ctx context.Context) error {
	return a.store.Remove(ctx)
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

// Run adapts Chat to the adk event interface. The last message in the input
// is treated as the user's turn.
func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			if e := recover(); e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		resp, err := a.Chat(ctx, input.Messages[len(input.Messages)-1].Content)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("chat failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message: &schema.Message{
						Role:    schema.Assistant,
						Content: resp.Message,
					},
					Role: schema.Assistant,
				},
			},
		})
	}()
	return iter
}
