package web

import (
	"context"

	"github.com/mulearn/dashboard/internal/core"
	"github.com/mulearn/dashboard/internal/logging"
)

// withIdentity binds the authenticated caller for the service layer and
// for request-scoped logging.
func withIdentity(ctx context.Context, id core.Identity) context.Context {
	ctx = core.ContextWithIdentity(ctx, id)
	return logging.WithUser(ctx, id.UserID)
}
