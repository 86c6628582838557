package insights

import (
	"strings"
	"sync"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	defaultHistoryMaxMessages = 20
	defaultHistoryMaxTokens   = 2000
)

// Conversation keeps the running message list of an interactive session
// within a message and rough token budget. The system message, when first,
// always survives trimming.
type Conversation struct {
	mu          sync.Mutex
	messages    []openrouter.ChatCompletionMessage
	maxMessages int
	maxTokens   int
	logger      *zap.Logger
}

func NewConversation(maxMessages, maxTokens int, logger *zap.Logger) *Conversation {
	if maxMessages <= 0 {
		maxMessages = defaultHistoryMaxMessages
	}
	if maxTokens <= 0 {
		maxTokens = defaultHistoryMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conversation{
		maxMessages: maxMessages,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

func (c *Conversation) Append(messages ...openrouter.ChatCompletionMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, messages...)
	c.enforceLimits()
}

func (c *Conversation) Messages() []openrouter.ChatCompletionMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	out := make([]openrouter.ChatCompletionMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *Conversation) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

func (c *Conversation) TokenCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return estimateTokens(c.messages)
}

func (c *Conversation) enforceLimits() {
	trimmed := false
	if len(c.messages) > c.maxMessages {
		c.messages = trimByCount(c.messages, c.maxMessages)
		trimmed = true
	}

	for len(c.messages) > 1 && estimateTokens(c.messages) > c.maxTokens {
		next := trimOldestNonSystem(c.messages)
		if len(next) == len(c.messages) {
			break
		}
		c.messages = next
		trimmed = true
	}

	if trimmed {
		c.logger.Debug("conversation trimmed",
			zap.Int("messages", len(c.messages)),
			zap.Int("tokens", estimateTokens(c.messages)),
		)
	}
}

func trimByCount(messages []openrouter.ChatCompletionMessage, max int) []openrouter.ChatCompletionMessage {
	if len(messages) <= max {
		return messages
	}
	if max <= 0 {
		return nil
	}
	if messages[0].Role == openrouter.ChatMessageRoleSystem {
		keep := max - 1
		if keep <= 0 {
			return messages[:1]
		}
		trimmed := make([]openrouter.ChatCompletionMessage, 0, max)
		trimmed = append(trimmed, messages[0])
		return append(trimmed, messages[len(messages)-keep:]...)
	}
	return messages[len(messages)-max:]
}

func trimOldestNonSystem(messages []openrouter.ChatCompletionMessage) []openrouter.ChatCompletionMessage {
	if len(messages) == 0 {
		return nil
	}
	if messages[0].Role == openrouter.ChatMessageRoleSystem {
		if len(messages) <= 1 {
			return messages
		}
		out := make([]openrouter.ChatCompletionMessage, 0, len(messages)-1)
		out = append(out, messages[0])
		return append(out, messages[2:]...)
	}
	return messages[1:]
}

// estimateTokens counts words; close enough for budget trimming.
func estimateTokens(messages []openrouter.ChatCompletionMessage) int {
	total := 0
	for _, msg := range messages {
		total += len(strings.Fields(msg.Content.Text))
		if msg.Content.Text == "" {
			for _, part := range msg.Content.Multi {
				total += len(strings.Fields(part.Text))
			}
		}
	}
	return total
}
