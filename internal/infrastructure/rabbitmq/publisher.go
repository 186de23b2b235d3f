package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/config"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/logger"
)

// BookingConfirmedEvent は予約確定時に発行されるイベント
type BookingConfirmedEvent struct {
	ScheduleID       string  `json:"schedule_id"`
	SeatID           string  `json:"seat_id"`
	TicketID         string  `json:"ticket_id"`
	BookingReference string  `json:"booking_reference"`
	PassengerName    string  `json:"passenger_name"`
	MobileNumber     string  `json:"mobile_number"`
	BoardingPoint    string  `json:"boarding_point"`
	DroppingPoint    string  `json:"dropping_point"`
	TotalAmount      float64 `json:"total_amount"`
	ConfirmedAt      string  `json:"confirmed_at"`
}

// Publisher は予約確定イベントをRabbitMQキューに発行する
type Publisher struct {
	cfg  config.RabbitMQConfig
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

// NewPublisher はRabbitMQに接続し、キューを宣言してPublisherを作成する
func NewPublisher(cfg config.RabbitMQConfig) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("RabbitMQチャネル作成に失敗: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("キュー宣言に失敗: %w", err)
	}
	return &Publisher{cfg: cfg, conn: conn, ch: ch}, nil
}

// PublishBookingConfirmed は予約確定イベントをJSONで発行する
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"",          // デフォルトエクスチェンジ
		p.cfg.Queue, // ルーティングキー＝キュー名
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("イベント発行に失敗: %w", err)
	}
	return nil
}

// Close はチャネルと接続を閉じる
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			logger.Warn("RabbitMQチャネルのクローズに失敗", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			logger.Warn("RabbitMQ接続のクローズに失敗", zap.Error(err))
		}
	}
}
