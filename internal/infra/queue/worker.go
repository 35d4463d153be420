package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Sink recebe as notificações consumidas (o hub de tempo real).
type Sink interface {
	Deliver(n entity.Notification)
}

type Worker struct {
	Channel *amqp.Channel
	Sink    Sink
	Logger  zerolog.Logger
}

func NewWorker(ch *amqp.Channel, sink Sink, logger zerolog.Logger) *Worker {
	return &Worker{Channel: ch, Sink: sink, Logger: logger}
}

// Start consome a fila até o contexto ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info().Str("queue", queueName).Msg("worker de notificações aguardando mensagens")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de consumo fechado")
			}
			w.handle(d)
		}
	}
}

func (w *Worker) handle(d amqp.Delivery) {
	var n entity.Notification
	if err := json.Unmarshal(d.Body, &n); err != nil || n.UserID == "" {
		// Mensagem malformada: rejeita sem requeue para não travar a fila
		w.Logger.Warn().Err(err).Str("message_id", d.MessageId).Msg("notificação inválida na fila")
		d.Nack(false, false)
		return
	}

	w.Sink.Deliver(n)
	d.Ack(false)
}
