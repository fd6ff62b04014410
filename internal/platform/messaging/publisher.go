// Package messaging publishes expense events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/explit/internal/core/domain"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const publishTimeout = 5 * time.Second

// ExpenseEvent is the JSON body of an expense.created or expense.deleted message.
type ExpenseEvent struct {
	Type        string          `json:"type"`
	ExpenseID   string          `json:"expenseId"`
	TeamID      string          `json:"teamId"`
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	TransferID  *string         `json:"transferId,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// NewExpenseEvent builds the event for expense.
func NewExpenseEvent(eventType string, expense domain.Expense, now time.Time) ExpenseEvent {
	return ExpenseEvent{
		Type:        eventType,
		ExpenseID:   expense.ExpenseID,
		TeamID:      expense.TeamID,
		UserID:      expense.UserID,
		Amount:      expense.Amount,
		Description: expense.Description,
		TransferID:  expense.TransferID,
		OccurredAt:  now.UTC(),
	}
}

// ErrNotConnected is returned while the publisher waits for the broker to come back.
var ErrNotConnected = errors.New("AMQP publisher is not connected")

const (
	minRedialDelay = 500 * time.Millisecond
	maxRedialDelay = 30 * time.Second
)

// Publisher sends expense events to a direct exchange. The queue is bound with
// its own name as routing key. A dropped connection is redialed in the background.
type Publisher struct {
	url          string
	exchangeName string
	queueName    string

	// amqp091 channels must not be used for concurrent publishes.
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	done      chan struct{}
	closeOnce sync.Once
}

var _ portssvc.ExpenseEventPublisher = (*Publisher)(nil)

// NewPublisher dials url and declares the exchange, the queue and their binding.
func NewPublisher(url, exchangeName, queueName string) (*Publisher, error) {
	p := &Publisher{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		done:         make(chan struct{}),
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect dials the broker, declares the topology and starts watching for closures.
func (p *Publisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(channel, p.exchangeName, p.queueName); err != nil {
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	connClosed := conn.NotifyClose(make(chan *amqp091.Error, 1))
	channelClosed := channel.NotifyClose(make(chan *amqp091.Error, 1))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed() {
		conn.Close()
		return ErrNotConnected
	}
	p.conn, p.channel = conn, channel
	go p.watch(connClosed, channelClosed)
	return nil
}

func (p *Publisher) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// watch blocks until the connection or the channel goes away, then redials
// with exponential backoff until it succeeds or Close is called.
func (p *Publisher) watch(connClosed, channelClosed <-chan *amqp091.Error) {
	var reason *amqp091.Error
	select {
	case <-p.done:
		return
	case reason = <-connClosed:
	case reason = <-channelClosed:
	}
	if p.closed() {
		return
	}

	p.mu.Lock()
	conn := p.conn
	p.conn, p.channel = nil, nil
	p.mu.Unlock()
	if conn != nil && !conn.IsClosed() {
		conn.Close()
	}

	attrs := []any{slog.String("exchange", p.exchangeName)}
	if reason != nil {
		attrs = append(attrs, slog.Int("code", reason.Code), slog.String("reason", reason.Reason))
	}
	slog.Warn("AMQP connection lost, redialing", attrs...)

	for attempt := 0; ; attempt++ {
		select {
		case <-p.done:
			return
		case <-time.After(redialDelay(attempt)):
		}
		if err := p.connect(); err != nil {
			if p.closed() {
				return
			}
			slog.Warn("AMQP redial failed",
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()))
			continue
		}
		slog.Info("AMQP connection restored", slog.Int("attempts", attempt+1))
		return
	}
}

// redialDelay doubles from minRedialDelay on every failed attempt, up to maxRedialDelay.
func redialDelay(attempt int) time.Duration {
	delay := minRedialDelay
	for i := 0; i < attempt && delay < maxRedialDelay; i++ {
		delay *= 2
	}
	return min(delay, maxRedialDelay)
}

func declareTopology(channel *amqp091.Channel, exchangeName, queueName string) error {
	if err := channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := channel.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishExpenseEvent publishes a persistent JSON message for expense.
func (p *Publisher) PublishExpenseEvent(ctx context.Context, eventType string, expense domain.Expense) error {
	body, err := json.Marshal(NewExpenseEvent(eventType, expense, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return fmt.Errorf("publish %s: %w", eventType, ErrNotConnected)
	}
	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		p.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         eventType,
			MessageId:    expense.ExpenseID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	slog.DebugContext(ctx, "Published expense event",
		slog.String("type", eventType),
		slog.String("expense_id", expense.ExpenseID),
		slog.String("exchange", p.exchangeName))
	return nil
}

// Close stops redialing and closes the channel and the connection.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })

	p.mu.Lock()
	conn, channel := p.conn, p.channel
	p.conn, p.channel = nil, nil
	p.mu.Unlock()

	var firstErr error
	if channel != nil {
		if err := channel.Close(); err != nil {
			firstErr = err
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NoopPublisher drops every event. It is used when AMQP_URL is not set.
type NoopPublisher struct{}

var _ portssvc.ExpenseEventPublisher = NoopPublisher{}

func (NoopPublisher) PublishExpenseEvent(context.Context, string, domain.Expense) error { return nil }

func (NoopPublisher) Close() error { return nil }
