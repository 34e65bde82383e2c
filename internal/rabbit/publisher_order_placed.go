package rabbit

import (
	"context"
	"encoding/json"
	"log"

	"freshbasket-backend/internal/dto"

	"github.com/rabbitmq/amqp091-go"
)

// OrderPlacedPublisher emite un evento fanout por cada orden materializada,
// tanto en el flujo COD como cuando un pago de pasarela se verifica.
// Publicar es best-effort: un broker caído no debe voltear la request.
type OrderPlacedPublisher struct {
	ch *amqp091.Channel
}

func NewOrderPlacedPublisher(ch *amqp091.Channel) *OrderPlacedPublisher {
	return &OrderPlacedPublisher{ch: ch}
}

func (p *OrderPlacedPublisher) OrderPlaced(ctx context.Context, ev dto.OrderPlacedEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Println("❌ Error serializando evento order_placed:", err)
		return
	}

	err = p.ch.PublishWithContext(
		ctx,
		OrderPlacedExchange,
		"", // fanout ignora routing key
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Println("❌ Error publicando order_placed:", err)
		return
	}

	log.Println("✔ Evento order_placed publicado para orden:", ev.OrderID)
}
