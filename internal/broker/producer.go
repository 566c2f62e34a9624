// Package broker publishes scan reports and mission decisions to Kafka.
package broker

import (
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"dronesearch-sim/internal/telemetry"
)

// Producer sends rows as JSON messages. Reports are keyed by target ID so
// every report for a target lands on one partition; decisions are keyed by
// mission ID.
type Producer struct {
	Producer       sarama.SyncProducer
	ReportsTopic   string
	DecisionsTopic string
	log            *slog.Logger
}

// NewProducer creates a synchronous producer that waits for all replicas.
func NewProducer(brokers []string, reportsTopic, decisionsTopic string, log *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.ClientID = "dronesearch-sim"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return newProducer(producer, reportsTopic, decisionsTopic, log), nil
}

func newProducer(p sarama.SyncProducer, reportsTopic, decisionsTopic string, log *slog.Logger) *Producer {
	if log == nil {
		log = slog.Default()
	}
	return &Producer{
		Producer:       p,
		ReportsTopic:   reportsTopic,
		DecisionsTopic: decisionsTopic,
		log:            log.With("component", "kafka"),
	}
}

func message(topic, key string, v any) (*sarama.ProducerMessage, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}, nil
}

func (p *Producer) send(msg *sarama.ProducerMessage) error {
	partition, offset, err := p.Producer.SendMessage(msg)
	if err != nil {
		return err
	}
	p.log.Debug("sent message", "topic", msg.Topic, "partition", partition, "offset", offset)
	return nil
}

// WriteReport publishes a scan report.
func (p *Producer) WriteReport(r telemetry.ReportRow) error {
	msg, err := message(p.ReportsTopic, r.TargetID, r)
	if err != nil {
		return err
	}
	return p.send(msg)
}

// WriteDecision publishes the coordinator's decision.
func (p *Producer) WriteDecision(d telemetry.DecisionRow) error {
	msg, err := message(p.DecisionsTopic, d.MissionID, d)
	if err != nil {
		return err
	}
	return p.send(msg)
}

// Close flushes and closes the producer.
func (p *Producer) Close() error {
	return p.Producer.Close()
}
