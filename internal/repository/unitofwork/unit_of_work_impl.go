package unitofwork

import (
	"context"
	"fmt"

	"braincells-be/internal/repository/contract"
	"braincells-be/internal/repository/implementation"
	"braincells-be/pkg/vectorindex"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db    *gorm.DB
	tx    *gorm.DB // set between Begin and Commit/Rollback
	index vectorindex.Index
}

func NewUnitOfWork(db *gorm.DB, index vectorindex.Index) UnitOfWork {
	return &UnitOfWorkImpl{
		db:    db,
		index: index,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) BraincellRepository() contract.BraincellRepository {
	return implementation.NewBraincellRepository(u.getDB())
}

// VectorIndex joins the open transaction when the index lives in the same
// database; other indexes are written directly.
func (u *UnitOfWorkImpl) VectorIndex() vectorindex.Index {
	return vectorindex.Bind(u.index, u.tx)
}
