package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesconsole/internal/messaging/kafka"
)

// newEventProducer поднимает Kafka producer для событий заказов.
// Kafka опциональна: пустой список брокеров или ошибка подключения дают nil,
// и сервер работает без публикации событий.
func newEventProducer(cfg Config, logger *log.Entry) *kafka.Producer {
	raw := strings.TrimSpace(cfg.KafkaBrokers)
	if raw == "" {
		return nil
	}

	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Warn("kafka is unavailable, order events are disabled")
		return nil
	}

	logger.WithField("brokers", brokers).Info("order events go to kafka")
	return producer
}

// closeEventProducer закрывает producer, если он был поднят.
func closeEventProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	}
}
