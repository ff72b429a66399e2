package services

import (
	"fmt"
	"net/smtp"
	"strings"

	intconfig "buslines/internal/config"
	"buslines/internal/domain/models"
	"buslines/internal/utils"
)

// NotifyService sends passenger emails over plain SMTP. Sends are best-effort;
// callers log failures and carry on.
type NotifyService struct {
	Env       intconfig.SMTPEnv
	RequestID string

	// Sender is injectable for tests; production uses smtp.SendMail.
	Sender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s NotifyService) send(to, subject, body string) error {
	if strings.TrimSpace(s.Env.Host) == "" {
		utils.LogEvent(s.RequestID, "notify", "send", "smtp not configured, skipping email to "+to)
		return nil
	}

	var msg strings.Builder
	msg.WriteString("From: " + s.Env.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.Env.User != "" {
		auth = smtp.PlainAuth("", s.Env.User, s.Env.Pass, s.Env.Host)
	}

	sender := s.Sender
	if sender == nil {
		sender = smtp.SendMail
	}
	addr := s.Env.Host + ":" + s.Env.Port
	return sender(addr, auth, s.Env.From, []string{to}, []byte(msg.String()))
}

// SendConfirmation emails the passenger once the gateway confirms payment.
func (s *NotifyService) SendConfirmation(b models.Booking, d models.ScheduleDetail) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour booking %s is confirmed.\n\nRoute: %s -> %s\nDeparture: %s\nBus: %s\nAmount paid: %s\n\nPlease arrive 30 minutes before departure.\n",
		b.PassengerName, b.BookingReference,
		d.Origin, d.Destination,
		d.DepartureTime.Format("Monday, 02 January 2006 at 15:04"),
		d.BusNumber,
		utils.FormatZAR(b.TotalCents),
	)
	return s.send(b.PassengerEmail, "Booking confirmed - "+b.BookingReference, body)
}

// SendCancellation emails the passenger after a cancellation, whatever its cause.
func (s *NotifyService) SendCancellation(b models.Booking) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour booking %s has been cancelled.\n",
		b.PassengerName, b.BookingReference,
	)
	if strings.TrimSpace(b.FailureReason) != "" {
		body += "Reason: " + b.FailureReason + "\n"
	}
	return s.send(b.PassengerEmail, "Booking cancelled - "+b.BookingReference, body)
}
