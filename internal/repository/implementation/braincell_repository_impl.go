package implementation

import (
	"context"
	"errors"

	"braincells-be/internal/entity"
	"braincells-be/internal/mapper"
	"braincells-be/internal/model"
	"braincells-be/internal/repository/contract"
	"braincells-be/internal/repository/specification"

	"gorm.io/gorm"
)

type BraincellRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BraincellMapper
}

func NewBraincellRepository(db *gorm.DB) contract.BraincellRepository {
	return &BraincellRepositoryImpl{
		db:     db,
		mapper: mapper.NewBraincellMapper(),
	}
}

func (r *BraincellRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BraincellRepositoryImpl) Create(ctx context.Context, braincell *entity.Braincell) error {
	m := r.mapper.ToModel(braincell)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*braincell = *r.mapper.ToEntity(m)
	return nil
}

// Update writes title and content only; the owner column is never touched
// after creation.
func (r *BraincellRepositoryImpl) Update(ctx context.Context, braincell *entity.Braincell) error {
	m := r.mapper.ToModel(braincell)
	err := r.db.WithContext(ctx).
		Model(m).
		Select("title", "content", "updated_at").
		Updates(m).Error
	if err != nil {
		return err
	}
	*braincell = *r.mapper.ToEntity(m)
	return nil
}

func (r *BraincellRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Braincell{}).Error
}

func (r *BraincellRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Braincell, error) {
	var m model.Braincell
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BraincellRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Braincell, error) {
	var models []*model.Braincell
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *BraincellRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Braincell{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
