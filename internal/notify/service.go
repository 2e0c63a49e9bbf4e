package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/bookings"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/chat"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

// WhatsAppLink builds a wa.me deep link to the given phone with an
// optional prefilled message. Returns "" when the phone does not
// normalize.
func WhatsAppLink(phone, text string) string {
	normalized := chat.NormalizePhone(phone)
	if normalized == "" {
		return ""
	}
	link := "https://wa.me/" + strings.TrimPrefix(normalized, "+")
	if text = strings.TrimSpace(text); text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}

// Service announces new leads to the team: an email when a sender is
// configured, always a wa.me link in the log so managers can reach the
// visitor in one click.
type Service struct {
	sender      EmailSender
	notifyEmail string
	baseURL     string
	log         *logging.Logger
}

// NewService builds the lead announcer. baseURL, when set, is the public
// site origin used to link the admin dashboard in notification emails.
func NewService(sender EmailSender, notifyEmail, baseURL string, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Default()
	}
	return &Service{sender: sender, notifyEmail: notifyEmail, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// NotifyBooking satisfies bookings.Notifier.
func (s *Service) NotifyBooking(ctx context.Context, b bookings.Booking) error {
	link := WhatsAppLink(b.Phone, fmt.Sprintf("Здравствуйте, %s! Это KVANTUM, вы оставляли заявку на консультацию.", b.Name))
	s.log.Info("new consultation request",
		"booking_id", b.ID, "name", b.Name, "service", b.Service, "whatsapp", link)

	if s.sender == nil || s.notifyEmail == "" {
		return nil
	}

	body := fmt.Sprintf(
		"New consultation request\n\nName: %s\nEmail: %s\nPhone: %s\nService: %s\nMessage: %s\n\nReply on WhatsApp: %s\n",
		b.Name, b.Email, b.Phone, b.Service, b.Message, link)
	if s.baseURL != "" {
		body += fmt.Sprintf("Review in the dashboard: %s/api/admin/overview\n", s.baseURL)
	}
	return s.sender.Send(ctx, EmailMessage{
		To:      s.notifyEmail,
		ToName:  "KVANTUM Team",
		Subject: fmt.Sprintf("New booking: %s (%s)", b.Name, b.Service),
		Body:    body,
	})
}
