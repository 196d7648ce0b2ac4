package contract

import (
	"context"

	"braincells-be/internal/entity"
	"braincells-be/internal/repository/specification"
)

type BraincellRepository interface {
	Create(ctx context.Context, braincell *entity.Braincell) error
	Update(ctx context.Context, braincell *entity.Braincell) error
	Delete(ctx context.Context, id string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Braincell, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Braincell, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
