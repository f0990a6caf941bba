package notifyrepo

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"hotelbooking/model"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const Exchange = "booking_events"

const (
	EventBookingCreated   = "booking.created"
	EventBookingPaid      = "booking.paid"
	EventBookingCancelled = "booking.cancelled"
)

// Event is the payload consumed by the mail sender.
type Event struct {
	ID               string              `json:"id"`
	Type             string              `json:"type"`
	BookingReference string              `json:"bookingReference"`
	GuestName        string              `json:"guestName"`
	GuestEmail       string              `json:"guestEmail"`
	CheckIn          string              `json:"checkIn"`
	CheckOut         string              `json:"checkOut"`
	Status           model.BookingStatus `json:"status"`
	PaymentStatus    model.PaymentStatus `json:"paymentStatus"`
	TotalAmount      float64             `json:"totalAmount"`
	OccurredAt       time.Time           `json:"occurredAt"`
}

type Repo interface {
	Publish(ctx context.Context, eventType string, b *model.Booking) error
}

func NewEvent(eventType string, b *model.Booking, at time.Time) Event {
	return Event{
		ID:               uuid.NewString(),
		Type:             eventType,
		BookingReference: b.BookingReference,
		GuestName:        b.Guest.Name,
		GuestEmail:       b.Guest.Email,
		CheckIn:          b.CheckIn.Format("2006-01-02"),
		CheckOut:         b.CheckOut.Format("2006-01-02"),
		Status:           b.Status,
		PaymentStatus:    b.PaymentStatus,
		TotalAmount:      model.Round2(b.Pricing.TotalAmount),
		OccurredAt:       at.UTC(),
	}
}

// publisher is the part of *amqp.Channel the notifier uses.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type amqpRepo struct {
	ch  publisher
	now func() time.Time
}

// NewAMQP declares the fanout exchange and publishes booking events to it.
func NewAMQP(conn *amqp.Connection) (Repo, *amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}
	if err := ch.ExchangeDeclare(Exchange, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, nil, err
	}
	return &amqpRepo{ch: ch, now: time.Now}, ch, nil
}

func newWithPublisher(p publisher, now func() time.Time) Repo {
	return &amqpRepo{ch: p, now: now}
}

func (r *amqpRepo) Publish(ctx context.Context, eventType string, b *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev := NewEvent(eventType, b, r.now())
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.ch.Publish(Exchange, eventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.OccurredAt,
		Type:         eventType,
		Body:         body,
	})
}

type logRepo struct{ log *slog.Logger }

// NewLog is used when no broker is configured; events only reach the log.
func NewLog(log *slog.Logger) Repo { return &logRepo{log: log} }

func (r *logRepo) Publish(ctx context.Context, eventType string, b *model.Booking) error {
	r.log.Info("booking event",
		"type", eventType,
		"reference", b.BookingReference,
		"status", b.Status,
		"payment_status", b.PaymentStatus,
	)
	return nil
}
