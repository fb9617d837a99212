package service

import (
	"fmt"
	"log"
	"net/smtp"

	"travelshare/backend/internal/config"
	"travelshare/backend/internal/util"
)

type EmailService interface {
	QueueWelcomeEmail(to, name string) error
	QueuePasswordResetEmail(to, name, code string) error
	Send(to, subject, body string) error
}

type emailService struct {
	rabbitMQ *util.RabbitMQClient
	cfg      *config.Config
}

// EmailMessage is the payload published to the email queue
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const (
	EmailQueueName = "email_queue"
	EmailExchange  = "email_exchange"
)

func NewEmailService(rabbitMQ *util.RabbitMQClient, cfg *config.Config) EmailService {
	return &emailService{
		rabbitMQ: rabbitMQ,
		cfg:      cfg,
	}
}

// QueueWelcomeEmail enqueues the signup welcome mail
func (s *emailService) QueueWelcomeEmail(to, name string) error {
	subject := "Welcome to TravelShare"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour account is ready. Start planning routes and find travel buddies!\r\n", name)
	return s.queue(to, subject, body)
}

// QueuePasswordResetEmail enqueues the reset code mail
func (s *emailService) QueuePasswordResetEmail(to, name, code string) error {
	subject := "Your password reset code"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour password reset code is %s. It expires in 15 minutes.\r\n\r\nIf you did not request this, you can ignore this mail.\r\n", name, code)
	return s.queue(to, subject, body)
}

func (s *emailService) queue(to, subject, body string) error {
	if s.rabbitMQ == nil {
		// No broker, send inline
		return s.Send(to, subject, body)
	}

	msg := EmailMessage{To: to, Subject: subject, Body: body}
	if err := s.rabbitMQ.Publish(EmailExchange, EmailQueueName, msg); err != nil {
		log.Printf("Failed to queue email to %s, sending inline: %v", to, err)
		return s.Send(to, subject, body)
	}
	return nil
}

// Send delivers a mail over SMTP
func (s *emailService) Send(to, subject, body string) error {
	if s.cfg.SMTPHost == "" {
		log.Printf("SMTP not configured, skipping email to %s (%s)", to, subject)
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	from := s.cfg.SMTPFrom
	if from == "" {
		from = s.cfg.SMTPUser
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		from, to, subject, body))

	if err := smtp.SendMail(addr, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
