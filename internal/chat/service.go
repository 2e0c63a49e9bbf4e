package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

// ErrEmptyMessage is returned for a blank visitor message.
var ErrEmptyMessage = errors.New("chat: empty message")

// BookingRequest is the finalized lead handed to the bookings service.
type BookingRequest struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Message string
}

// ConsultationBooker finalizes a consultation from a completed chat lead.
type ConsultationBooker interface {
	BookFromChat(ctx context.Context, req BookingRequest) (BookingRef, error)
}

// BookingRef identifies a booking finalized during a chat turn.
type BookingRef struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// Result is one assistant turn as returned to the widget.
type Result struct {
	Reply         string      `json:"reply"`
	Booking       *BookingRef `json:"booking,omitempty"`
	MissingFields []string    `json:"missingFields,omitempty"`
}

// Service runs the conversational lead-capture flow: it keeps the session
// cache and the durable store in sync, decides between the lead branch and
// a conversational reply, and finalizes bookings when a draft completes.
type Service struct {
	cache  *SessionCache
	store  *Store
	llm    *LLMResponder
	rules  *RuleResponder
	booker ConsultationBooker
	log    *logging.Logger
	tracer trace.Tracer
}

func NewService(cache *SessionCache, store *Store, llm *LLMResponder, rules *RuleResponder, booker ConsultationBooker, log *logging.Logger) *Service {
	return &Service{
		cache:  cache,
		store:  store,
		llm:    llm,
		rules:  rules,
		booker: booker,
		log:    log,
		tracer: otel.Tracer("kvantum.internal.chat"),
	}
}

// Handle processes one visitor message and returns the assistant reply.
// A missing or malformed session token does not fail the request: the
// turn is served anonymously, without session memory.
func (s *Service) Handle(ctx context.Context, sessionToken, message string) (Result, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Result{}, ErrEmptyMessage
	}

	ctx, span := s.tracer.Start(ctx, "chat.handle")
	defer span.End()

	s.cache.Sweep()

	lang := "en"
	if ContainsCyrillic(message) {
		lang = "ru"
	}
	span.SetAttributes(attribute.String("kvantum.lang", lang))

	var (
		result Result
		branch string
		err    error
	)
	if ValidSessionToken(sessionToken) {
		result, branch, err = s.sessionTurn(ctx, sessionToken, message, lang)
	} else {
		result, branch, err = s.anonymousTurn(ctx, message, lang)
	}
	if err != nil {
		return Result{}, err
	}
	chatTurnsTotal.WithLabelValues(branch, lang).Inc()
	span.SetAttributes(attribute.String("kvantum.branch", branch))
	return result, nil
}

func (s *Service) sessionTurn(ctx context.Context, sessionToken, message, lang string) (Result, string, error) {
	sess, err := s.store.GetOrCreate(ctx, sessionToken)
	if err != nil {
		return Result{}, "", err
	}

	history, draft, err := s.hydrate(ctx, sessionToken, sess)
	if err != nil {
		return Result{}, "", err
	}

	extracted := ExtractLeadFields(message)
	intent := DetectConsultationIntent(message)

	var result Result
	var branch string
	if intent || extracted.HasContactData() || draft.HasContactData() {
		result, draft, branch, err = s.leadTurn(ctx, sess, draft, extracted, message, lang)
		if err != nil {
			return Result{}, "", err
		}
	} else {
		result.Reply, branch = s.converse(ctx, history, message, lang)
	}

	history = append(history,
		Message{Role: RoleUser, Content: message},
		Message{Role: RoleAssistant, Content: result.Reply},
	)
	s.cache.Put(sessionToken, history, draft)

	if err := s.store.AppendMessage(ctx, sess.ID, RoleUser, message); err != nil {
		return Result{}, "", err
	}
	if err := s.store.AppendMessage(ctx, sess.ID, RoleAssistant, result.Reply); err != nil {
		return Result{}, "", err
	}
	return result, branch, nil
}

// anonymousTurn serves a turn without any session: nothing is cached or
// persisted, but extraction still runs, so a single message carrying a
// complete lead books a consultation.
func (s *Service) anonymousTurn(ctx context.Context, message, lang string) (Result, string, error) {
	extracted := ExtractLeadFields(message)
	intent := DetectConsultationIntent(message)

	if !intent && !extracted.HasContactData() {
		reply, branch := s.converse(ctx, nil, message, lang)
		return Result{Reply: reply}, branch, nil
	}

	missing := MissingLeadFields(extracted)
	if len(missing) > 0 {
		return Result{
			Reply:         missingFieldsPrompt(lang, missing),
			MissingFields: missing,
		}, "lead", nil
	}

	result, err := s.finalizeBooking(ctx, extracted, message, lang)
	if err != nil {
		return Result{}, "", err
	}
	s.log.Info("anonymous chat lead booked", "booking_id", result.Booking.ID)
	return result, "booking", nil
}

// hydrate reconciles the cache entry with the durable session: the
// transcript is backfilled after a restart, and the working draft is the
// durable one merged under any fresher in-memory fields. A leftover cached
// draft on a session that is no longer collecting is stale and dropped.
func (s *Service) hydrate(ctx context.Context, token string, sess *Session) ([]Message, LeadDraft, error) {
	cached, ok := s.cache.Get(token)

	history := cached.History
	if len(history) == 0 {
		stored, err := s.store.RecentMessages(ctx, sess.ID, s.cache.maxHistory)
		if err != nil {
			return nil, LeadDraft{}, err
		}
		for _, m := range stored {
			history = append(history, Message{Role: m.Role, Content: m.Content})
		}
	}

	var draft LeadDraft
	if sess.LeadStatus == LeadStatusCollecting {
		draft = MergeLeadDraft(sess.Draft, cached.Draft)
	} else if ok && !cached.Draft.IsEmpty() {
		s.cache.ClearDraft(token)
	}
	return history, draft, nil
}

func (s *Service) converse(ctx context.Context, history []Message, message, lang string) (string, string) {
	if s.llm != nil {
		if reply, ok := s.llm.Respond(ctx, history, message, lang); ok {
			return reply, "llm"
		}
	}
	reply, _ := s.rules.Respond(ctx, history, message, lang)
	return reply, "rules"
}

func (s *Service) leadTurn(ctx context.Context, sess *Session, draft, extracted LeadDraft, message, lang string) (Result, LeadDraft, string, error) {
	draft = MergeLeadDraft(draft, extracted)
	if err := s.store.SaveDraft(ctx, sess.ID, draft, lang); err != nil {
		return Result{}, draft, "", err
	}

	missing := MissingLeadFields(draft)
	if len(missing) > 0 {
		return Result{
			Reply:         missingFieldsPrompt(lang, missing),
			MissingFields: missing,
		}, draft, "lead", nil
	}

	result, err := s.finalizeBooking(ctx, draft, message, lang)
	if err != nil {
		return Result{}, draft, "", err
	}
	if err := s.store.MarkBooked(ctx, sess.ID, result.Booking.ID); err != nil {
		return Result{}, draft, "", err
	}
	s.cache.ClearDraft(sess.SessionID)
	s.log.Info("chat lead booked", "session_id", sess.SessionID, "booking_id", result.Booking.ID)

	return result, LeadDraft{}, "booking", nil
}

// finalizeBooking hands a complete draft to the bookings service and
// builds the confirmation reply.
func (s *Service) finalizeBooking(ctx context.Context, draft LeadDraft, message, lang string) (Result, error) {
	service := draft.Service
	if service == "" {
		service = "chat-consultation"
	}
	leadMessage := draft.Message
	if leadMessage == "" {
		leadMessage = message
	}

	ref, err := s.booker.BookFromChat(ctx, BookingRequest{
		Name:    draft.Name,
		Email:   strings.ToLower(strings.TrimSpace(draft.Email)),
		Phone:   NormalizePhone(draft.Phone),
		Service: service,
		Message: "[chatbot] " + leadMessage,
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat: finalize booking: %w", err)
	}
	bookingsFromChatTotal.Inc()
	return Result{
		Reply:   bookingConfirmation(lang, draft, ref.ID),
		Booking: &ref,
	}, nil
}

var fieldLabels = map[string]map[string]string{
	"en": {"name": "your name", "email": "your email", "phone": "your phone number"},
	"ru": {"name": "ваше имя", "email": "вашу почту", "phone": "ваш номер телефона"},
}

func missingFieldsPrompt(lang string, missing []string) string {
	labels := make([]string, 0, len(missing))
	for _, f := range missing {
		labels = append(labels, fieldLabels[lang][f])
	}
	joined := strings.Join(labels, ", ")
	if lang == "ru" {
		return "Отлично, записываю вас на консультацию! Осталось уточнить " + joined +
			". Можно одной строкой, например: имя: Айжан, почта: aizhan@example.com, телефон: +996700123456"
	}
	return "Great, let's get you booked! I still need " + joined +
		". You can send it in one line, for example: name: Jane, email: jane@example.com, phone: +996700123456"
}

func bookingConfirmation(lang string, draft LeadDraft, bookingID uuid.UUID) string {
	phone := NormalizePhone(draft.Phone)
	if lang == "ru" {
		return fmt.Sprintf("Готово, %s! Заявка на консультацию принята, номер заявки %s. Мы свяжемся с вами по номеру %s в WhatsApp или Telegram в ближайшее время.", draft.Name, bookingID, phone)
	}
	return fmt.Sprintf("All set, %s! Your consultation request has been received, booking reference %s. We will reach out to you at %s on WhatsApp or Telegram shortly.", draft.Name, bookingID, phone)
}
