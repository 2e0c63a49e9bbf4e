package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const knowledgeKey = "kb:document"

// defaultKnowledgeDocument seeds the assistant when no document has been
// uploaded yet. Sections are markdown-headed; the fallback section matcher
// and the LLM system prompt both consume this text.
const defaultKnowledgeDocument = `## Programs and pricing
- Brain Charge (entry level) - 1,000 KGS/RUB, 21 days, 15 minutes per day, starts at 6:00 AM Kyrgyzstan time
- Resources Club - 5,000 KGS/month, 4 weeks, 2 sessions with Altynai and 2 with a curator
- Intensive "Mom & Dad - My 2 Wings" - $300 / 26,300 KGS, 1 month, 10 lessons, 20 practices, 3 Zoom sessions
- REBOOT course - $1,000, 8 weeks, 24 sessions, personal session with Altynai
- Mentorship (University of Self-Knowledge) - premium program, pricing via managers

## Booking a consultation
- Entry to individual work is only after a free consultation
- Book via the website button, WhatsApp or Telegram
- Leave name, email and phone and a manager will reach out

## Founder
- Altynai Eshinbekova, specialist in subconscious and quantum field work
- NLP Master, master of deep analysis sessions
- Personally accompanies clients to their goals

## Payment methods
- Bank transfer, Visa/Mastercard, local KGS payments
- Installments available for REBOOT and Mentorship

## Schedule and format
- Brain Charge runs daily at 6:00 AM Kyrgyzstan time
- Group sessions happen over Zoom
- Personal sessions are scheduled individually after the consultation

## Results and testimonials
- Hundreds of graduates across programs
- Testimonials are published on the website and social media

## Refund policy
- Refunds are handled individually within the first week of a program

## Location and contacts
- Online-first, based in Bishkek, Kyrgyzstan
- WhatsApp and Telegram buttons on the website reach a manager directly`

// KnowledgeStore returns the current knowledge-base document used both to
// augment the completion-service prompt and to drive the fallback section
// matcher. The document lives in Redis and is cached in-process for a short
// TTL; without Redis the built-in default serves.
type KnowledgeStore struct {
	client   *redis.Client
	cacheTTL time.Duration

	mu       sync.Mutex
	cached   string
	cachedAt time.Time
}

// NewKnowledgeStore creates a store. client may be nil, which pins the
// default document.
func NewKnowledgeStore(client *redis.Client, cacheTTL time.Duration) *KnowledgeStore {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &KnowledgeStore{client: client, cacheTTL: cacheTTL}
}

// Document returns the current knowledge text.
func (s *KnowledgeStore) Document(ctx context.Context) string {
	if s.client == nil {
		return defaultKnowledgeDocument
	}

	s.mu.Lock()
	if s.cached != "" && time.Since(s.cachedAt) < s.cacheTTL {
		doc := s.cached
		s.mu.Unlock()
		return doc
	}
	s.mu.Unlock()

	doc, err := s.client.Get(ctx, knowledgeKey).Result()
	if err != nil || strings.TrimSpace(doc) == "" {
		return defaultKnowledgeDocument
	}

	s.mu.Lock()
	s.cached = doc
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return doc
}

// Replace overwrites the stored document and invalidates the cache.
func (s *KnowledgeStore) Replace(ctx context.Context, doc string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Set(ctx, knowledgeKey, doc, 0).Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cached = ""
	s.cachedAt = time.Time{}
	s.mu.Unlock()
	return nil
}
