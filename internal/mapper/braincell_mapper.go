package mapper

import (
	"braincells-be/internal/entity"
	"braincells-be/internal/model"
)

type BraincellMapper struct{}

func NewBraincellMapper() *BraincellMapper {
	return &BraincellMapper{}
}

func (m *BraincellMapper) ToEntity(b *model.Braincell) *entity.Braincell {
	if b == nil {
		return nil
	}

	return &entity.Braincell{
		Id:        b.Id,
		Title:     b.Title,
		Content:   b.Content,
		UserId:    b.UserId,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (m *BraincellMapper) ToModel(b *entity.Braincell) *model.Braincell {
	if b == nil {
		return nil
	}

	return &model.Braincell{
		Id:        b.Id,
		Title:     b.Title,
		Content:   b.Content,
		UserId:    b.UserId,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (m *BraincellMapper) ToEntities(braincells []*model.Braincell) []*entity.Braincell {
	entities := make([]*entity.Braincell, len(braincells))
	for i, b := range braincells {
		entities[i] = m.ToEntity(b)
	}
	return entities
}
