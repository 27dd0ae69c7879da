package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/config"
	"github.com/oksasatya/studypal/pkg/helpers"
	"github.com/oksasatya/studypal/pkg/mailer"
	mailtpl "github.com/oksasatya/studypal/pkg/mailer/templates"
)

// Sender is satisfied by *mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type outcome int

const (
	ack outcome = iota
	drop
	requeue
)

var errNoRecipient = errors.New("job has no recipient")

type worker struct {
	sender Sender
	brand  mailtpl.Brand
	logger *logrus.Logger
}

// handle renders and sends one queued job. Bad payloads are dropped; send failures are requeued.
func (w *worker) handle(ctx context.Context, body []byte) (outcome, error) {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return drop, err
	}
	if job.To == "" {
		return drop, errNoRecipient
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, w.brand.Merge(job.Data))
		if err != nil {
			return drop, err
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.sender.Send(c, job.To, subject, text, html); err != nil {
		return requeue, err
	}
	return ack, nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		logger.WithError(err).Fatal("queue declare")
	}
	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	w := &worker{
		sender: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		brand:  mailtpl.Brand{CompanyName: cfg.CompanyName, AppURL: cfg.AppURL, SupportURL: cfg.SupportURL},
		logger: logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			res, err := w.handle(ctx, msg.Body)
			switch res {
			case ack:
				_ = msg.Ack(false)
			case drop:
				logger.WithError(err).Warn("dropping email job")
				_ = msg.Nack(false, false)
			case requeue:
				logger.WithError(err).Warn("send failed; requeueing")
				_ = msg.Nack(false, true)
			}
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down...")
	cancel()
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
