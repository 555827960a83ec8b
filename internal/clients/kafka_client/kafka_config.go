package kafka_client

type KafkaConfig struct {
	Broker   string
	Topic    string
	ClientID string
}

func NewKafkaConfig(broker, topic string) KafkaConfig {
	if topic == "" {
		topic = KAFKA_TOPIC_SENTIMENT_RESULTS
	}
	return KafkaConfig{
		Broker:   broker,
		Topic:    topic,
		ClientID: "sentichat",
	}
}
