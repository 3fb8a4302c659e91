package services

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-gomail/gomail"
)

// Mailer is the outbound mail collaborator. Controllers depend on this
// interface so tests can capture what would have been sent.
type Mailer interface {
	SendOTP(to, code string) error
	SendAppointmentConfirmation(to, subject, body, attachmentName string, attachment []byte) error
}

// GomailSender delivers mail over SMTP using the same env configuration the
// rest of the app reads (Email/Password plus optional SMTP_HOST/SMTP_PORT).
type GomailSender struct {
	host     string
	port     int
	from     string
	password string
}

func NewGomailSender() *GomailSender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	return &GomailSender{
		host:     host,
		port:     port,
		from:     os.Getenv("Email"),
		password: os.Getenv("Password"),
	}
}

func (s *GomailSender) send(m *gomail.Message) error {
	d := gomail.NewDialer(s.host, s.port, s.from, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	return nil
}

func (s *GomailSender) SendOTP(to, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password Reset OTP")
	m.SetBody("text/plain", "Your OTP for password reset is "+code)
	return s.send(m)
}

func (s *GomailSender) SendAppointmentConfirmation(to, subject, body, attachmentName string, attachment []byte) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	if len(attachment) > 0 {
		m.Attach(attachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}))
	}
	return s.send(m)
}
