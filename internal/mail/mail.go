package mail

import (
	"fmt"      // Message formatting
	"net/smtp" // SMTP client
	"strings"  // Message assembly
)

// Sender delivers outbound email. Handlers depend on this interface so
// tests can substitute a recording fake.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender sends mail through a plain SMTP endpoint
type SMTPSender struct {
	Host     string // SMTP server host
	Port     string // SMTP server port
	Username string // SMTP username
	Password string // SMTP password
	From     string // From address
}

// NewSMTPSender constructs an SMTP-backed sender
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, Username: username, Password: password, From: from}
}

// Send delivers a single HTML message
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host) // SMTP authentication
	// Assemble the MIME message
	var msg strings.Builder
	msg.WriteString("From: " + s.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	// Send the message
	return smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, []byte(msg.String()))
}

// ConfirmationEmail builds the subject and body of the registration
// confirmation message with the given confirmation link.
func ConfirmationEmail(confirmURL string) (subject, body string) {
	subject = "Confirm your email"
	body = fmt.Sprintf(`
		<h2>Hello!</h2>
		<p>Thank you for registering with MyFinance.</p>
		<p>Click the link below to confirm your email address:</p>
		<a href="%s">Confirm email</a>
		<p>If you did not register, just ignore this message.</p>
	`, confirmURL)
	return subject, body
}
