package service

import (
	"context"
	"encoding/json"

	"docvault-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IPublisherService interface {
	PublishFeedbackEmail(ctx context.Context, feedbackId uuid.UUID) error
}

type publisherService struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewPublisherService(pubSub *gochannel.GoChannel, topicName string) IPublisherService {
	return &publisherService{
		pubSub:    pubSub,
		topicName: topicName,
	}
}

func (ps *publisherService) PublishFeedbackEmail(ctx context.Context, feedbackId uuid.UUID) error {
	payload, err := json.Marshal(dto.FeedbackEmailMessage{FeedbackId: feedbackId})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return ps.pubSub.Publish(ps.topicName, msg)
}
