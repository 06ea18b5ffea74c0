package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"ms-events/internal/config"
	"ms-events/internal/models"
)

// Producer announces event and participation-request lifecycle changes.
// A nil *Producer is a valid no-op publisher (Kafka disabled).
type Producer struct {
	writer *kafka.Writer
	topics config.TopicConfig
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer, topics: topics}
}

type eventNotification struct {
	EventID     int64  `json:"event_id"`
	InitiatorID int64  `json:"initiator_id"`
	Title       string `json:"title"`
	State       string `json:"state"`
}

type requestNotification struct {
	RequestID   int64  `json:"request_id"`
	EventID     int64  `json:"event_id"`
	RequesterID int64  `json:"requester_id"`
	Status      string `json:"status"`
}

// PublishEventPublished streams an admin publication to Kafka.
func (p *Producer) PublishEventPublished(event *models.Event) error {
	if p == nil {
		return nil
	}
	return p.publish(p.topics.EventPublished, event.ID, eventNotification{
		EventID:     event.ID,
		InitiatorID: event.InitiatorID,
		Title:       event.Title,
		State:       event.State,
	})
}

// PublishEventCanceled streams an admin rejection or an owner cancellation.
func (p *Producer) PublishEventCanceled(event *models.Event) error {
	if p == nil {
		return nil
	}
	return p.publish(p.topics.EventCanceled, event.ID, eventNotification{
		EventID:     event.ID,
		InitiatorID: event.InitiatorID,
		Title:       event.Title,
		State:       event.State,
	})
}

// PublishRequestStatus streams a participation-request status transition.
func (p *Producer) PublishRequestStatus(request *models.ParticipationRequest) error {
	if p == nil {
		return nil
	}
	return p.publish(p.topics.RequestStatus, request.EventID, requestNotification{
		RequestID:   request.ID,
		EventID:     request.EventID,
		RequesterID: request.RequesterID,
		Status:      request.Status,
	})
}

func (p *Producer) publish(topic string, key int64, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(strconv.FormatInt(key, 10)),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
