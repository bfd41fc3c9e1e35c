// Package notify delivers order-confirmation emails through a local actor,
// keeping delivery off the request path. Messages are fire-and-forget; a
// failed send never affects the order that triggered it.
package notify

import (
	"fmt"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/example/storefront/pkg/models"
)

type OrderConfirmation struct {
	Recipient string
	OrderID   string
	ItemCount int
	Total     float64
}

// EmailActor processes confirmation messages one at a time. The actual
// mail-provider call is stubbed with a log line.
type EmailActor struct {
	logger *zap.Logger
}

func (a *EmailActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *OrderConfirmation:
		a.logger.Info("Sending order confirmation email",
			zap.String("recipient", msg.Recipient),
			zap.String("order_id", msg.OrderID),
			zap.Int("item_count", msg.ItemCount),
			zap.Float64("total", msg.Total))

	case *actor.Started:
		a.logger.Info("Email actor started")

	case *actor.Stopping:
		a.logger.Info("Email actor stopping")
	}
}

type Service struct {
	system *actor.ActorSystem
	pid    *actor.PID
}

func NewService(logger *zap.Logger) (*Service, error) {
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		return &EmailActor{logger: logger.Named("email-actor")}
	})
	pid, err := system.Root.SpawnNamed(props, "email-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn email actor: %w", err)
	}

	return &Service{system: system, pid: pid}, nil
}

// OrderPlaced queues a confirmation email for users who opted in.
func (s *Service) OrderPlaced(user *models.User, order *models.Order) {
	s.system.Root.Send(s.pid, &OrderConfirmation{
		Recipient: user.Email,
		OrderID:   order.ID,
		ItemCount: len(order.Items),
		Total:     order.ComputeTotal(),
	})
}

func (s *Service) Shutdown() {
	s.system.Shutdown()
}
