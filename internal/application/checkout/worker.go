package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefronthq/storefront/internal/domain/event"
	dompayment "github.com/storefronthq/storefront/internal/domain/payment"
	domuser "github.com/storefronthq/storefront/internal/domain/user"
)

// ConfirmationWorker upgrades provisional orders when the payment provider
// reports a session outcome through the webhook.
type ConfirmationWorker struct {
	users      domuser.Repository
	subscriber event.Subscriber
	log        *zap.Logger
}

func NewConfirmationWorker(users domuser.Repository, subscriber event.Subscriber, logger *zap.Logger) *ConfirmationWorker {
	if logger == nil {
		logger = zap.L()
	}
	return &ConfirmationWorker{
		users:      users,
		subscriber: subscriber,
		log:        logger.With(zap.String("component", "checkout_confirmation_worker")),
	}
}

func (w *ConfirmationWorker) Start() {
	if w.subscriber == nil || w.users == nil {
		return
	}
	w.subscriber.Subscribe(dompayment.SessionCompletedEvent{}.EventName(), w.handleSessionCompleted)
	w.subscriber.Subscribe(dompayment.SessionFailedEvent{}.EventName(), w.handleSessionFailed)
}

func (w *ConfirmationWorker) handleSessionCompleted(ctx context.Context, e event.Event) error {
	evt, ok := e.(dompayment.SessionCompletedEvent)
	if !ok {
		return nil
	}

	err := w.users.MutateOrderBySession(ctx, evt.SessionID, func(o *domuser.Order) error {
		o.Status = domuser.OrderConfirmed
		return nil
	})
	if err != nil {
		w.log.Error("order_confirm_failed",
			zap.String("session_id", evt.SessionID),
			zap.Error(err),
		)
		return fmt.Errorf("checkout worker: confirm order: %w", err)
	}

	w.log.Info("order_confirmed", zap.String("session_id", evt.SessionID))
	return nil
}

func (w *ConfirmationWorker) handleSessionFailed(ctx context.Context, e event.Event) error {
	evt, ok := e.(dompayment.SessionFailedEvent)
	if !ok {
		return nil
	}

	err := w.users.MutateOrderBySession(ctx, evt.SessionID, func(o *domuser.Order) error {
		o.Status = domuser.OrderFailed
		return nil
	})
	if err != nil {
		w.log.Error("order_fail_mark_failed",
			zap.String("session_id", evt.SessionID),
			zap.Error(err),
		)
		return fmt.Errorf("checkout worker: mark order failed: %w", err)
	}

	w.log.Info("order_marked_failed",
		zap.String("session_id", evt.SessionID),
		zap.String("reason", evt.Reason),
	)
	return nil
}
