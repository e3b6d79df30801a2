package services

import (
	"fmt"
	"log"
	"os"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client *resend.Client
}

var emailService *EmailService

// InitEmailService initializes the email service with Resend API
func InitEmailService() {
	apiKey := os.Getenv("RESEND_API_KEY")

	if apiKey == "" {
		log.Println("WARNING: RESEND_API_KEY not set. Email service will not be available.")
		return
	}

	emailService = &EmailService{
		client: resend.NewClient(apiKey),
	}

	log.Println("Email service initialized successfully with Resend")
}

// GetEmailService returns the singleton email service instance
func GetEmailService() *EmailService {
	return emailService
}

// SendMemberApprovedEmail welcomes a newly approved member. Sent best effort
// after the status change is already confirmed in the store.
func (s *EmailService) SendMemberApprovedEmail(toEmail string, firstName string) error {
	if s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	if firstName == "" {
		firstName = "friend"
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            text-align: center;
            padding: 20px 0;
            border-bottom: 2px solid #8a6d3b;
        }
        .header h1 {
            color: #8a6d3b;
            margin: 0;
        }
        .content {
            padding: 30px 0;
        }
        .footer {
            text-align: center;
            padding: 20px 0;
            border-top: 1px solid #ddd;
            font-size: 12px;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>ECWA Gospel Church Mai-Gero</h1>
    </div>

    <div class="content">
        <h2>Welcome to the Family!</h2>

        <p>Dear %s,</p>

        <p>Your membership registration has been reviewed and approved. We are delighted to welcome you into the congregation.</p>

        <p>Join us for worship on Sundays, and do reach out to the church office if you have any questions about fellowship groups or service opportunities.</p>

        <p>Blessings,<br>ECWA Gospel Church Mai-Gero</p>
    </div>

    <div class="footer">
        <p>This is an automated message from the church membership desk.</p>
    </div>
</body>
</html>
`, firstName)

	textBody := fmt.Sprintf(`
Welcome to the Family!

Dear %s,

Your membership registration has been reviewed and approved. We are delighted to welcome you into the congregation.

Join us for worship on Sundays, and do reach out to the church office if you have any questions about fellowship groups or service opportunities.

Blessings,
ECWA Gospel Church Mai-Gero
`, firstName)

	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_FROM_EMAIL"),
		To:      []string{toEmail},
		Subject: "Your membership has been approved",
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send approval email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.Printf("Successfully sent approval email to %s. Email ID: %s", toEmail, sent.Id)
	return nil
}
