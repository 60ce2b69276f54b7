package driven

import (
	"context"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
)

// Notifier presents notifications to the operator. Implementations decide
// how a blocking notification is acknowledged.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}
