package tagresolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"stockscan/internal/logging"
	"stockscan/internal/services"
	"stockscan/internal/warehouse"
)

// Lookup is the backend call used for resolution.
type Lookup interface {
	LookupTag(ctx context.Context, tagValue string) (warehouse.TagPayload, error)
}

// Client resolves tag values.
type Client struct {
	lookup Lookup
	logger *slog.Logger
}

// NewClient wraps lookup.
func NewClient(lookup Lookup, logger *slog.Logger) *Client {
	return &Client{lookup: lookup, logger: logging.NewComponentLogger(logger, "tag-resolver")}
}

// Resolve classifies tagValue. Errors carry the services taxonomy; only
// network, not_found and other come back from the lookup itself.
func (c *Client) Resolve(ctx context.Context, tagValue string) (Resolution, error) {
	tagValue = strings.TrimSpace(tagValue)
	if tagValue == "" {
		return nil, services.Wrap(services.ErrValidation, "tagresolve", "resolve", "empty tag value", nil)
	}
	payload, err := c.lookup.LookupTag(services.WithTagValue(ctx, tagValue), tagValue)
	if err != nil {
		kind := services.Classify(err)
		switch kind {
		case services.KindNetwork, services.KindNotFound:
		default:
			if ctx.Err() == nil {
				// Lookup failures outside network and not_found collapse to other.
				err = fmt.Errorf("%w: tagresolve: resolve: %v", services.ErrOther, err)
			}
		}
		c.logger.Debug("tag resolution failed",
			logging.TagValue(tagValue),
			logging.String("kind", string(services.Classify(err))),
			logging.Error(err),
		)
		return nil, err
	}
	resolution := FromPayload(payload)
	c.logger.Debug("tag resolved",
		logging.TagValue(tagValue),
		logging.String("kind", resolution.Kind()),
	)
	return resolution, nil
}
