package service

import (
	"encoding/json"
	"log"

	"travelshare/backend/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EmailWorker consumes email messages from RabbitMQ and delivers them over SMTP
type EmailWorker struct {
	emailService EmailService
	rabbitMQ     *util.RabbitMQClient
	stopChan     chan bool
}

// NewEmailWorker creates a new email worker
func NewEmailWorker(emailService EmailService, rabbitMQ *util.RabbitMQClient) *EmailWorker {
	return &EmailWorker{
		emailService: emailService,
		rabbitMQ:     rabbitMQ,
		stopChan:     make(chan bool),
	}
}

// Start starts consuming email messages from RabbitMQ
func (w *EmailWorker) Start() error {
	if w.rabbitMQ == nil {
		return nil // RabbitMQ not available, worker will not start
	}

	channel := w.rabbitMQ.GetChannel()
	if channel == nil {
		return nil
	}

	if err := channel.ExchangeDeclare(
		EmailExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}

	queue, err := channel.QueueDeclare(
		EmailQueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	if err := channel.QueueBind(
		EmailQueueName,
		EmailQueueName,
		EmailExchange,
		false,
		nil,
	); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		queue.Name,
		"email_worker",
		false, // auto-ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		log.Println("Email worker started, consuming messages...")
		for {
			select {
			case <-w.stopChan:
				log.Println("Email worker stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("Email queue closed")
					return
				}
				if err := w.processEmailMessage(msg); err != nil {
					log.Printf("Error processing email message: %v", err)
					// Don't ack on error, let RabbitMQ requeue
					msg.Nack(false, true)
				} else {
					msg.Ack(false)
				}
			}
		}
	}()

	return nil
}

// processEmailMessage sends one queued email
func (w *EmailWorker) processEmailMessage(msg amqp.Delivery) error {
	var emailMsg EmailMessage
	if err := json.Unmarshal(msg.Body, &emailMsg); err != nil {
		return err
	}

	return w.emailService.Send(emailMsg.To, emailMsg.Subject, emailMsg.Body)
}

// Stop stops the email worker
func (w *EmailWorker) Stop() {
	close(w.stopChan)
}
