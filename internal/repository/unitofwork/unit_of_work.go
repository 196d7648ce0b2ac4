package unitofwork

import (
	"context"

	"braincells-be/internal/repository/contract"
	"braincells-be/pkg/vectorindex"
)

// UnitOfWork groups the relational store and the vector index. Between Begin
// and Commit both accessors share one transaction when the index supports it.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	BraincellRepository() contract.BraincellRepository
	VectorIndex() vectorindex.Index
}
