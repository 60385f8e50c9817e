package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"

	html "github.com/gofiber/template/html/v2"
)

// Notification event types. Each maps to a template file of the same name.
const (
	EventPaymentInstructions = "payment_instructions"
	EventPaymentConfirmed    = "payment_confirmed"
	EventOrderShipped        = "order_shipped"
	EventPaymentReceived     = "payment_received"
)

var subjects = map[string]string{
	EventPaymentInstructions: "How to pay for your order",
	EventPaymentConfirmed:    "Payment confirmed - your order is being prepared",
	EventOrderShipped:        "Your order is on the way",
	EventPaymentReceived:     "Payment received - thank you",
}

// Notifier is what the order and lifecycle services see. Notify never blocks
// and never reports failure; email is best-effort by contract.
type Notifier interface {
	Notify(event, to string, data map[string]any)
}

type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// LogMailer writes outgoing mail to the log. Used when no SMTP relay is
// configured and in tests.
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("[mail] to=%s subject=%q bytes=%d", to, subject, len(htmlBody))
	return nil
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	Addr string // host:port
	From string
}

func (m SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s",
		m.From, to, subject, htmlBody)
	return smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg))
}

type event struct {
	Type string
	To   string
	Data map[string]any
}

// Dispatcher is the asynchronous notification queue. Order mutations enqueue
// after their transaction commits; a single worker renders and sends. A full
// queue drops the event (logged) rather than back-pressuring a request.
type Dispatcher struct {
	engine *html.Engine
	mailer Mailer
	events chan event
	done   chan struct{}
}

func NewDispatcher(templatesDir string, mailer Mailer) (*Dispatcher, error) {
	engine := html.New(templatesDir, ".html")
	if err := engine.Load(); err != nil {
		return nil, err
	}
	d := &Dispatcher{
		engine: engine,
		mailer: mailer,
		events: make(chan event, 64),
		done:   make(chan struct{}),
	}
	go d.run()
	return d, nil
}

func (d *Dispatcher) Notify(eventType, to string, data map[string]any) {
	select {
	case d.events <- event{Type: eventType, To: to, Data: data}:
	default:
		log.Printf("[notify] queue full, dropping %s for %s", eventType, to)
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	close(d.events)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.events {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev event) {
	var buf bytes.Buffer
	if err := d.engine.Render(&buf, ev.Type, ev.Data); err != nil {
		fields, _ := json.Marshal(ev.Data)
		log.Printf("[notify] render %s failed: %v data=%s", ev.Type, err, fields)
		return
	}
	subject := subjects[ev.Type]
	if subject == "" {
		subject = "Update on your order"
	}
	if err := d.mailer.Send(ev.To, subject, buf.String()); err != nil {
		// Delivery failure never propagates to the request that queued it.
		log.Printf("[notify] send %s to %s failed: %v", ev.Type, ev.To, err)
	}
}
