package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/chat"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

var bookingTracer = otel.Tracer("kvantum.internal.bookings")

// ErrInvalid wraps request validation failures so handlers can map them
// to 400s.
var ErrInvalid = errors.New("bookings: invalid request")

const notifyTimeout = 10 * time.Second

// Notifier announces a new booking to the team. Implementations must not
// block the request path; the service calls them best-effort.
type Notifier interface {
	NotifyBooking(ctx context.Context, b Booking) error
}

// CreateRequest is a consultation request from the website form or chat.
type CreateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// Service validates and persists consultation bookings and fans out
// notifications.
type Service struct {
	repo     *Repository
	notifier Notifier
	log      *logging.Logger
}

func NewService(repo *Repository, notifier Notifier, log *logging.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// Create validates the request, stores a pending booking and notifies the
// team in the background. Notification failures never fail the booking.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "bookings.create")
	defer span.End()

	name := chat.NormalizeName(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !chat.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalid)
	}
	phone := chat.NormalizePhone(req.Phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: valid phone is required", ErrInvalid)
	}
	service := strings.TrimSpace(req.Service)
	if service == "" {
		service = DefaultService
	}
	span.SetAttributes(attribute.String("kvantum.service", service))

	booking, err := s.repo.Create(ctx, &Booking{
		Name:    name,
		Email:   email,
		Phone:   phone,
		Service: service,
		Message: strings.TrimSpace(req.Message),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("booking created", "booking_id", booking.ID, "service", booking.Service)

	if s.notifier != nil {
		go s.notify(*booking)
	}
	return booking, nil
}

// BookFromChat finalizes a lead captured by the chat widget. It satisfies
// chat.ConsultationBooker.
func (s *Service) BookFromChat(ctx context.Context, req chat.BookingRequest) (chat.BookingRef, error) {
	b, err := s.Create(ctx, CreateRequest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Service: req.Service,
		Message: req.Message,
	})
	if err != nil {
		return chat.BookingRef{}, err
	}
	return chat.BookingRef{ID: b.ID, Status: b.Status}, nil
}

func (s *Service) notify(b Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyBooking(ctx, b); err != nil {
		s.log.Warn("booking notification failed", "booking_id", b.ID, "error", err)
	}
}
