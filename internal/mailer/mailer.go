package mailer

import (
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"

	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

// Mailer sends booking confirmations through Resend. A nil *Mailer (no API
// key configured) silently skips sending.
type Mailer struct {
	client *resend.Client
	from   string
}

func New(apiKey, from string) *Mailer {
	if apiKey == "" {
		return nil
	}
	return &Mailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// SendBookingConfirmation emails the patient their reference code and time.
// Callers run it in a goroutine; a failure is logged, never surfaced.
func (m *Mailer) SendBookingConfirmation(ap *models.Appointment, email string) {
	if m == nil || email == "" {
		return
	}

	subject := "Your appointment is confirmed"
	body := fmt.Sprintf(
		"Your appointment on %s is confirmed.\n\nReference: %s\n\nIf you need to change it, contact the clinic and quote your reference.",
		ap.StartAt.Format("Monday, 2 January 2006 at 15:04"),
		ap.Reference,
	)

	_, err := m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		log.Println("mailer error:", err)
	}
}
