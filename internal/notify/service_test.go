package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/bookings"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

type capturingSender struct {
	got []EmailMessage
	err error
}

func (c *capturingSender) Send(_ context.Context, msg EmailMessage) error {
	c.got = append(c.got, msg)
	return c.err
}

func TestWhatsAppLink(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		text  string
		want  string
	}{
		{"plain", "+996700123456", "", "https://wa.me/996700123456"},
		{"with text", "+996700123456", "Привет, мир", "https://wa.me/996700123456?text=" + "%D0%9F%D1%80%D0%B8%D0%B2%D0%B5%D1%82%2C+%D0%BC%D0%B8%D1%80"},
		{"double zero prefix", "00996700123456", "", "https://wa.me/996700123456"},
		{"invalid phone", "12", "hi", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WhatsAppLink(tt.phone, tt.text); got != tt.want {
				t.Errorf("WhatsAppLink(%q, %q) = %q, want %q", tt.phone, tt.text, got, tt.want)
			}
		})
	}
}

func TestNotifyBookingSendsEmail(t *testing.T) {
	sender := &capturingSender{}
	svc := NewService(sender, "team@example.com", "https://kvantum.example/", logging.Default())

	b := bookings.Booking{
		ID: uuid.New(), Name: "Aida", Email: "aida@example.com",
		Phone: "+996700123456", Service: "reboot", Message: "[chatbot] hi",
	}
	if err := svc.NotifyBooking(context.Background(), b); err != nil {
		t.Fatalf("NotifyBooking: %v", err)
	}
	if len(sender.got) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.got))
	}
	msg := sender.got[0]
	if msg.To != "team@example.com" {
		t.Errorf("to = %q", msg.To)
	}
	if !strings.Contains(msg.Body, "https://wa.me/996700123456") {
		t.Errorf("body missing whatsapp link: %q", msg.Body)
	}
	if !strings.Contains(msg.Subject, "Aida") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "https://kvantum.example/api/admin/overview") {
		t.Errorf("body missing dashboard link: %q", msg.Body)
	}

	var _ bookings.Notifier = svc
}

func TestNotifyBookingWithoutSender(t *testing.T) {
	svc := NewService(nil, "", "", logging.Default())
	if err := svc.NotifyBooking(context.Background(), bookings.Booking{Phone: "+996700123456"}); err != nil {
		t.Fatalf("NotifyBooking without sender: %v", err)
	}
}
