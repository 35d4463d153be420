package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Eventos de notificação vão num exchange fanout: cada instância da API tem a
// sua fila exclusiva e entrega aos websockets conectados nela.
const (
	ExchangeName = "ex.notificacoes"
	DLQName      = "q.notificacoes.dlq"
	DLXName      = "ex.dlx" // Dead Letter Exchange
	RoutingKey   = "k.notificacao"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao declarar topologia: %w", err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(DLQName, RoutingKey, DLXName, false, nil); err != nil {
		return err
	}

	return ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil)
}

// DeclareInstanceQueue cria a fila exclusiva desta instância. Mensagens
// rejeitadas vão para a DLQ.
func (r *RabbitMQ) DeclareInstanceQueue() (string, error) {
	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}
	q, err := r.Ch.QueueDeclare("", false, true, true, false, args)
	if err != nil {
		return "", err
	}
	if err := r.Ch.QueueBind(q.Name, RoutingKey, ExchangeName, false, nil); err != nil {
		return "", err
	}
	return q.Name, nil
}

func (r *RabbitMQ) IsClosed() bool {
	return r.Conn == nil || r.Conn.IsClosed()
}

func (r *RabbitMQ) Close() error {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		return r.Conn.Close()
	}
	return nil
}
