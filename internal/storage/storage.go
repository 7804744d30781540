package storage

import (
	"context"

	"liquidityZap/internal/model"
)

// Storage defines a sink for committed zap records.
type Storage interface {
	PutZapRecords(ctx context.Context, records []model.ZapRecord) error
}
