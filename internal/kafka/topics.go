package kafka

import (
	"log"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"
)

const (
	TopicBookingCreated   = "bookd.booking.created"
	TopicBookingUpdated   = "bookd.booking.updated"
	TopicBookingCancelled = "bookd.booking.cancelled"
	TopicSessionLogin     = "bookd.session.login"
	TopicSessionLogout    = "bookd.session.logout"
)

// AllTopics lists every topic the service publishes to.
func AllTopics() []string {
	return []string{
		TopicBookingCreated,
		TopicBookingUpdated,
		TopicBookingCancelled,
		TopicSessionLogin,
		TopicSessionLogout,
	}
}

// EnsureTopicsExist creates the given topics if the broker does not have
// them yet. Failures are logged per topic so one bad topic does not block
// the rest.
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		err = controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		if err != nil {
			if err.Error() == "kafka server: topic already exists" {
				continue
			}
			log.Printf("Error creating topic %s: %v", topic, err)
		}
	}
	return nil
}
