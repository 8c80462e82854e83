package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendFeedbackNotification(toEmail, rating, comment, sessionId string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendFeedbackNotification(toEmail, rating, comment, sessionId string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New answer feedback: %s", rating))

	if comment == "" {
		comment = "(no comment)"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>New Answer Feedback</h2>
			<p><strong>Rating:</strong> %s</p>
			<p><strong>Comment:</strong></p>
			<blockquote style="border-left: 3px solid #ccc; padding-left: 10px;">%s</blockquote>
			<p><strong>Session:</strong> %s</p>
		</div>
	`, rating, comment, sessionId)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send feedback notification to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Feedback notification sent to %s\n", toEmail)
	return nil
}
