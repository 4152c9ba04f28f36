package ports

import (
	"context"

	"epistack/domain/dataset"
)

// DatasetSourcePort loads a read-only tabular dataset
type DatasetSourcePort interface {
	Load(ctx context.Context) (*dataset.Frame, error)
	// Describe names the source in logs and rendered output
	Describe() string
}
