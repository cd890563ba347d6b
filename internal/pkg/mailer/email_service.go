// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendPaymentReceipt(toEmail, fullName, projectTitle string, amount float64, reference string) error
	SendRefundNotice(toEmail, fullName, projectTitle string, amount float64, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	// Get Frontend URL from ENV or default to a safe placeholder
	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendPaymentReceipt(toEmail, fullName, projectTitle string, amount float64, reference string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Contribution Receipt")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thank you, %s!</h2>
			<p>Your contribution has been received.</p>
			<table style="border-collapse: collapse;">
				<tr><td style="padding: 4px 12px 4px 0;">Project</td><td><strong>%s</strong></td></tr>
				<tr><td style="padding: 4px 12px 4px 0;">Amount</td><td><strong>%.2f</strong></td></tr>
				<tr><td style="padding: 4px 12px 4px 0;">Reference</td><td>%s</td></tr>
			</table>
			<p>You can view your contributions anytime:</p>
			<a href="%s/contributions" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">My Contributions</a>
		</div>
	`, fullName, projectTitle, amount, reference, s.frontendURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send receipt to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Receipt sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendRefundNotice(toEmail, fullName, projectTitle string, amount float64, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Contribution Has Been Refunded")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hello %s,</h2>
			<p>Your contribution to <strong>%s</strong> of <strong>%.2f</strong> has been refunded.</p>
			<p>Reason: %s</p>
			<p>The funds should appear in your account within a few business days depending on your provider.</p>
			<p>If you didn't request this refund, please contact support.</p>
		</div>
	`, fullName, projectTitle, amount, reason)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send refund notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Refund notice sent to %s\n", toEmail)
	return nil
}
