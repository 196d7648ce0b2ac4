package unitofwork

import (
	"context"

	"braincells-be/pkg/vectorindex"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db    *gorm.DB
	index vectorindex.Index
}

func NewRepositoryFactory(db *gorm.DB, index vectorindex.Index) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db:    db,
		index: index,
	}
}

// NewUnitOfWork is short lived, one per request.
func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db, f.index)
}
