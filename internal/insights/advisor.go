// Package insights produces a short business summary from the Store. When
// an LLM is configured it writes the summary with read-only tools over the
// Store; otherwise, or when the model fails, a rule-based summary is used.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"bizdash/internal/llm"
	"bizdash/internal/model"
	"bizdash/internal/store"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	maxToolRounds   = 4
	topCustomers    = 3
	summaryQuestion = "Summarize how the business is doing today and what needs attention first."
)

var ErrTooManyRounds = errors.New("llm did not answer within the tool round limit")

type Source string

const (
	SourceRules Source = "rules"
	SourceLLM   Source = "llm"
)

type Summary struct {
	Source     Source           `json:"source"`
	Text       string           `json:"text"`
	Highlights []string         `json:"highlights,omitempty"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`
	Snapshot   Snapshot         `json:"snapshot"`
}

type Advisor struct {
	llm    *llm.Client
	store  *store.Store
	logger *zap.Logger
}

func New(llmClient *llm.Client, st *store.Store, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{
		llm:    llmClient,
		store:  st,
		logger: logger.Named("insights"),
	}
}

// Summarize never fails because of the model. The only error is ctx's.
func (a *Advisor) Summarize(ctx context.Context) (Summary, error) {
	snap := Take(a.store, topCustomers)
	highlights := ruleHighlights(snap)
	rules := Summary{
		Source:     SourceRules,
		Text:       strings.Join(highlights, " "),
		Highlights: highlights,
		Snapshot:   snap,
	}

	if !a.llm.Enabled() {
		return rules, nil
	}

	answer, calls, err := a.ask(ctx, snap, summaryPrompt(snap), nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rules, ctxErr
		}
		a.logger.Warn("llm summary failed; using rules", zap.Error(err))
		rules.ToolCalls = calls
		return rules, nil
	}

	return Summary{
		Source:     SourceLLM,
		Text:       answer,
		Highlights: highlights,
		ToolCalls:  calls,
		Snapshot:   snap,
	}, nil
}

// Ask answers a free-form question. conv carries earlier turns and may be
// nil for a one-shot question.
func (a *Advisor) Ask(ctx context.Context, question string, conv *Conversation) (Summary, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Summary{}, &model.ValidationError{Field: "question", Reason: "is required"}
	}
	if !a.llm.Enabled() {
		return Summary{}, llm.ErrNotConfigured
	}

	snap := Take(a.store, topCustomers)
	answer, calls, err := a.ask(ctx, snap, question, conv)
	if err != nil {
		return Summary{ToolCalls: calls}, err
	}
	return Summary{Source: SourceLLM, Text: answer, ToolCalls: calls, Snapshot: snap}, nil
}

// ask runs the tool loop on a copy of the conversation. The turn is only
// appended to conv once the model produced an answer, so a failed round
// leaves no unanswered question behind.
func (a *Advisor) ask(ctx context.Context, snap Snapshot, question string, conv *Conversation) (string, []ToolCallRecord, error) {
	var messages []openrouter.ChatCompletionMessage
	if conv != nil {
		messages = conv.Messages()
	}
	var turn []openrouter.ChatCompletionMessage
	if len(messages) == 0 {
		turn = append(turn, openrouter.SystemMessage(llm.SystemPrompt(snap.BusinessName, snap.Currency, snap.Language)))
	}
	turn = append(turn, openrouter.UserMessage(question))

	var records []ToolCallRecord
	for round := 0; round < maxToolRounds; round++ {
		msg, err := a.llm.ChatWithMessages(ctx, append(slices.Clip(messages), turn...), llm.ToolSchemas())
		if err != nil {
			return "", records, err
		}
		turn = append(turn, msg)

		if len(msg.ToolCalls) == 0 {
			answer := strings.TrimSpace(msg.Content.Text)
			if answer == "" {
				return "", records, llm.ErrEmptyResponse
			}
			if conv != nil {
				conv.Append(turn...)
			}
			return answer, records, nil
		}

		toolMsgs, calls := a.executeToolCalls(msg.ToolCalls)
		records = append(records, calls...)
		turn = append(turn, toolMsgs...)
	}
	return "", records, ErrTooManyRounds
}

func summaryPrompt(snap Snapshot) string {
	data, err := json.Marshal(snap)
	if err != nil {
		return summaryQuestion
	}
	return summaryQuestion + "\n\nCurrent data:\n" + string(data)
}
