package ports

import (
	"context"

	"github.com/najmulislamnajim/odms-cache/internal/domain"
)

// Port: read access to the relational source of delivery data.
// A DeliverySource wraps exactly one connection and is not safe for use by
// more than one worker.
type DeliverySource interface {
	// Return the distinct (billing date, agent code) pairs billed today.
	ListWorkUnits(ctx context.Context) ([]domain.WorkUnit, error)
	// Run the extraction join for one work unit.
	FetchDeliveryInfo(ctx context.Context, unit domain.WorkUnit) (*domain.ResultSet, error)
	Close() error
}

// Opens dedicated DeliverySource connections, one per caller.
type SourceConnector interface {
	Connect(ctx context.Context) (DeliverySource, error)
}
