package aggregate

import (
	"context"
	"log/slog"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// DisclosureSink receives a decrypted aggregate loss once its proof has been
// verified. How the value is displayed or stored is out of core scope; the
// sink is the hand-off boundary to that collaborator.
type DisclosureSink interface {
	Disclose(ctx context.Context, retailer domain.RetailerID, totalLoss uint64) error
}

// LogSink is the default disclosure collaborator: it records the disclosure
// in the operational log and nothing else.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Disclose(ctx context.Context, retailer domain.RetailerID, totalLoss uint64) error {
	s.Logger.InfoContext(ctx, "aggregate loss disclosed",
		"retailer_id", retailer.String(),
		"total_loss", totalLoss,
	)
	return nil
}
