package chat

import (
	"context"
	"strings"
	"time"

	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

const (
	defaultLLMTimeout   = 15 * time.Second
	llmMaxOutputTokens  = 1024
	llmTemperature      = 0.4
	llmReplyMaxRunes    = 2000
	systemPromptPreface = `You are the AI assistant for KVANTUM, an online school of
self-development founded by Altynai Eshinbekova. Answer briefly and warmly.
Reply in the same language the visitor writes in (English or Russian).
Use only the knowledge base below; if it does not cover the question,
suggest booking a free consultation. Never invent prices or dates.`
)

// Responder produces an assistant reply for one visitor turn. history does
// not include the current message. Returning false passes the turn to the
// next responder in the chain.
type Responder interface {
	Respond(ctx context.Context, history []Message, message, lang string) (string, bool)
}

// LLMResponder asks the completion service with the knowledge base as a
// system prompt. Any failure, timeout or blank reply defers to the next
// responder.
type LLMResponder struct {
	client    LLMClient
	knowledge *KnowledgeStore
	timeout   time.Duration
	log       *logging.Logger
}

func NewLLMResponder(client LLMClient, knowledge *KnowledgeStore, timeout time.Duration, log *logging.Logger) *LLMResponder {
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	return &LLMResponder{client: client, knowledge: knowledge, timeout: timeout, log: log}
}

func (r *LLMResponder) Respond(ctx context.Context, history []Message, message, lang string) (string, bool) {
	if r.client == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	system := []string{systemPromptPreface}
	if r.knowledge != nil {
		system = append(system, "Knowledge base:\n\n"+r.knowledge.Document(ctx))
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: message})

	resp, err := r.client.Complete(ctx, LLMRequest{
		System:      system,
		Messages:    messages,
		MaxTokens:   llmMaxOutputTokens,
		Temperature: llmTemperature,
	})
	if err != nil {
		r.log.Warn("completion service failed, falling back to rules", "error", err)
		llmFallbacks.Inc()
		return "", false
	}
	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		llmFallbacks.Inc()
		return "", false
	}
	if runes := []rune(reply); len(runes) > llmReplyMaxRunes {
		reply = strings.TrimSpace(string(runes[:llmReplyMaxRunes]))
	}
	return reply, true
}

// RuleResponder always answers: keyword table first, then the knowledge
// base section matcher, then the generic catch-all.
type RuleResponder struct {
	knowledge *KnowledgeStore
}

func NewRuleResponder(knowledge *KnowledgeStore) *RuleResponder {
	return &RuleResponder{knowledge: knowledge}
}

func (r *RuleResponder) Respond(ctx context.Context, _ []Message, message, lang string) (string, bool) {
	if reply, ok := MatchRule(message, lang); ok {
		return reply, true
	}
	if r.knowledge != nil {
		if reply, ok := MatchKnowledge(r.knowledge.Document(ctx), message, lang); ok {
			return reply, true
		}
	}
	return CatchAllReply(lang), true
}
