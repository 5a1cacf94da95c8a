package handlers

import (
	"context"

	"mercator-hq/jimmybridge/pkg/upstream"
)

// Upstream is the upstream chat service as seen by the handlers.
// *upstream.Client implements it.
type Upstream interface {
	Chat(ctx context.Context, req *upstream.Request) (*upstream.BodyReader, error)
	Health() upstream.Health
}
