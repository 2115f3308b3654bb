package payment

import (
	"context"
	"time"

	"puntoventa-be/internal/logger"

	"go.uber.org/zap"
)

// Gateway is the external capture step. The instrument was validated before
// this point; the gateway decides whether the funds move.
type Gateway interface {
	Capture(ctx context.Context, req CaptureRequest) error
}

// simulatedGateway stands in for the card network. It approves every capture
// after a fixed delay representing gateway latency. Callers bound the wait
// with a context deadline and treat expiry as a decline, never as success.
type simulatedGateway struct {
	delay time.Duration
}

func NewSimulatedGateway(delay time.Duration) Gateway {
	return &simulatedGateway{delay: delay}
}

func (g *simulatedGateway) Capture(ctx context.Context, req CaptureRequest) error {
	log := logger.FromCtx(ctx).With(
		zap.Int64("order_id", req.OrderID),
		zap.Int64("amount", req.Amount),
	)

	log.Info("capturing payment")

	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		log.Warn("payment capture aborted", zap.Error(ctx.Err()))
		return ctx.Err()
	}

	log.Info("payment captured")
	return nil
}
