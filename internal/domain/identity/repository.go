package identity

import (
	"context"

	"github.com/google/uuid"
)

// SchoolRepository persists schools
type SchoolRepository interface {
	Save(ctx context.Context, school *School) error
	Update(ctx context.Context, school *School) error
	FindByID(ctx context.Context, id uuid.UUID) (*School, error)
	FindAll(ctx context.Context) ([]*School, error)
	NextCode(ctx context.Context) (int, error)
}
