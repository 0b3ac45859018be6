package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

// Builder produces a briefing for one route.
type Builder interface {
	Build(ctx context.Context, req domain.RouteRequest) (domain.Briefing, error)
}

// BriefingTransformer implements Transformer on top of a Builder. A request
// that decodes but cannot be served still yields a briefing, marked failed.
type BriefingTransformer struct {
	builder Builder
	logger  *slog.Logger
}

// NewTransformer creates a BriefingTransformer.
func NewTransformer(builder Builder, logger *slog.Logger) *BriefingTransformer {
	return &BriefingTransformer{
		builder: builder,
		logger:  logger,
	}
}

func (t *BriefingTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Briefing, error) {
	req, err := domain.ParseRouteRequest(raw)
	if err != nil {
		return domain.Briefing{}, err
	}

	b, err := t.builder.Build(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Briefing{}, ctx.Err()
		}
		t.logger.Warn("briefing failed",
			"request_id", req.RequestID,
			"departure", req.Departure,
			"destination", req.Destination,
			"kind", domain.ErrorKind(err),
			"retryable", domain.IsRetryable(err),
			"error", err,
		)
		return domain.FailedBriefing(req, err), nil
	}
	return b, nil
}
