// setup.go
package rabbit

import (
	"log"

	"github.com/rabbitmq/amqp091-go"
)

// Exchange fanout al que se publican las órdenes materializadas.
// Los consumidores (notificaciones, seguimiento de estado) declaran y
// bindean sus propias colas.
const OrderPlacedExchange = "order_placed"

func Setup(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		OrderPlacedExchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	)
	if err != nil {
		log.Println("❌ Error declarando exchange:", err)
		return err
	}

	log.Println("🐰 Exchange order_placed (fanout) declarado")
	return nil
}
