// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/repository/specification"
	"crowdfund-be/internal/repository/unitofwork"
	"crowdfund-be/pkg/events"
	pktNats "crowdfund-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the funding reconciliation worker. It recomputes a
// project's raised total from the paid contributions whenever a payment or
// refund lands, and emits PROJECT_FUNDED once the target is crossed.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishFundingRecalcMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal funding recalc message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: payload.ProjectId})
	if err != nil {
		log.Printf("[ERROR] Failed to load project %s: %v", payload.ProjectId, err)
		msg.Nack()
		return
	}
	if project == nil {
		log.Printf("[WARN] Funding recalc for unknown project %s", payload.ProjectId)
		msg.Ack() // Project deleted? Ack.
		return
	}

	paid, err := uow.ContributionRepository().FindAll(ctx,
		specification.ByProject{ProjectID: project.Id},
		specification.ByPaymentStatus{Status: string(entity.PaymentStatusPaid)},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to sum contributions for project %s: %v", project.Id, err)
		msg.Nack()
		return
	}

	var raised float64
	for _, c := range paid {
		raised += c.Amount
	}
	log.Printf("[INFO] Project %s raised %.2f of %.2f", project.Id, raised, project.TargetAmount)

	switch {
	case project.Status == entity.ProjectStatusActive && raised >= project.TargetAmount:
		if err := uow.ProjectRepository().UpdateStatus(ctx, project.Id, string(entity.ProjectStatusFunded)); err != nil {
			log.Printf("[ERROR] Failed to mark project %s funded: %v", project.Id, err)
			msg.Nack()
			return
		}
		cs.publishProjectFunded(ctx, project, raised)
		log.Printf("[SUCCESS] Project %s fully funded", project.Id)

	case project.Status == entity.ProjectStatusFunded && raised < project.TargetAmount:
		// Refunds can pull a funded project back under its target.
		if err := uow.ProjectRepository().UpdateStatus(ctx, project.Id, string(entity.ProjectStatusActive)); err != nil {
			log.Printf("[ERROR] Failed to reopen project %s: %v", project.Id, err)
			msg.Nack()
			return
		}
		log.Printf("[INFO] Project %s reopened after refund", project.Id)
	}

	msg.Ack()
}

func (cs *consumerService) publishProjectFunded(ctx context.Context, project *entity.Project, raised float64) {
	if cs.eventPublisher == nil {
		return
	}
	event := events.BaseEvent{
		Type: events.TypeProjectFunded,
		Data: map[string]interface{}{
			"project_id":    project.Id,
			"title":         project.Title,
			"target_amount": project.TargetAmount,
			"raised_amount": raised,
			"occurred_at":   time.Now(),
		},
		OccurredAt: time.Now(),
	}
	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		log.Printf("[WARN] Failed to publish PROJECT_FUNDED event: %v", err)
	}
}
