package service

import (
	"context"
	"fmt"
	"time"

	"braincells-be/internal/apperror"
	"braincells-be/internal/dto"
	"braincells-be/internal/entity"
	"braincells-be/internal/pkg/logger"
	"braincells-be/internal/repository/specification"
	"braincells-be/internal/repository/unitofwork"
	"braincells-be/pkg/embedding"
	"braincells-be/pkg/events"
	"braincells-be/pkg/vectorindex"

	"github.com/google/uuid"
)

const braincellModule = "BraincellService"

type IBraincellService interface {
	Create(ctx context.Context, userId string, req *dto.CreateBraincellRequest) (*dto.BraincellResponse, error)
	Update(ctx context.Context, userId string, req *dto.UpdateBraincellRequest) (*dto.BraincellResponse, error)
	Delete(ctx context.Context, userId string, req *dto.DeleteBraincellRequest) error
	List(ctx context.Context, userId string) ([]*dto.BraincellResponse, error)
	Show(ctx context.Context, userId string, id string) (*dto.BraincellResponse, error)
}

type braincellService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	publisher         events.Publisher
	logger            logger.ILogger
}

func NewBraincellService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	publisher events.Publisher,
	logger logger.ILogger,
) IBraincellService {
	return &braincellService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		publisher:         publisher,
		logger:            logger,
	}
}

// Create requires a caller identity. The row and its vector entry are written
// in one transaction so a failed upsert leaves no orphan row.
func (s *braincellService) Create(ctx context.Context, userId string, req *dto.CreateBraincellRequest) (*dto.BraincellResponse, error) {
	if userId == "" {
		return nil, apperror.NewUnauthorized("")
	}

	now := time.Now()
	braincell := &entity.Braincell{
		Id:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		UserId:    userId,
		CreatedAt: now,
		UpdatedAt: now,
	}

	values, err := s.embeddingProvider.Generate(ctx, braincell.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("embed braincell: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.BraincellRepository().Create(ctx, braincell); err != nil {
		return nil, fmt.Errorf("insert braincell: %w", err)
	}
	if err := uow.VectorIndex().Upsert(ctx, s.vectorFor(braincell, values)); err != nil {
		return nil, fmt.Errorf("upsert braincell vector: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(braincellModule, "braincell created", map[string]interface{}{
		"braincell_id": braincell.Id,
		"user_id":      userId,
	})
	s.publish(ctx, events.BraincellCreated, braincell)

	return toBraincellResponse(braincell), nil
}

// Update checks existence before ownership, so an unknown id is a 404 even
// for anonymous callers.
func (s *braincellService) Update(ctx context.Context, userId string, req *dto.UpdateBraincellRequest) (*dto.BraincellResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	braincell, err := uow.BraincellRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if braincell == nil {
		return nil, apperror.NewNotFound("braincell", "braincell data not found")
	}
	if !braincell.IsOwnedBy(userId) {
		return nil, apperror.NewUnauthorized("")
	}

	braincell.Title = req.Title
	braincell.Content = req.Content
	braincell.UpdatedAt = time.Now()

	values, err := s.embeddingProvider.Generate(ctx, braincell.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("embed braincell: %w", err)
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.BraincellRepository().Update(ctx, braincell); err != nil {
		return nil, fmt.Errorf("update braincell: %w", err)
	}
	if err := uow.VectorIndex().Upsert(ctx, s.vectorFor(braincell, values)); err != nil {
		return nil, fmt.Errorf("upsert braincell vector: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(braincellModule, "braincell updated", map[string]interface{}{
		"braincell_id": braincell.Id,
		"user_id":      userId,
	})
	s.publish(ctx, events.BraincellUpdated, braincell)

	return toBraincellResponse(braincell), nil
}

func (s *braincellService) Delete(ctx context.Context, userId string, req *dto.DeleteBraincellRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	braincell, err := uow.BraincellRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return err
	}
	if braincell == nil {
		return apperror.NewNotFound("braincell", "braincell not found")
	}
	if !braincell.IsOwnedBy(userId) {
		return apperror.NewUnauthorized("")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.BraincellRepository().Delete(ctx, braincell.Id); err != nil {
		return fmt.Errorf("delete braincell: %w", err)
	}
	if err := uow.VectorIndex().Delete(ctx, braincell.Id); err != nil {
		return fmt.Errorf("delete braincell vector: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info(braincellModule, "braincell deleted", map[string]interface{}{
		"braincell_id": braincell.Id,
		"user_id":      userId,
	})
	s.publish(ctx, events.BraincellDeleted, braincell)

	return nil
}

func (s *braincellService) List(ctx context.Context, userId string) ([]*dto.BraincellResponse, error) {
	if userId == "" {
		return nil, apperror.NewUnauthorized("")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	braincells, err := uow.BraincellRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.BraincellResponse, 0, len(braincells))
	for _, braincell := range braincells {
		result = append(result, toBraincellResponse(braincell))
	}
	return result, nil
}

func (s *braincellService) Show(ctx context.Context, userId string, id string) (*dto.BraincellResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	braincell, err := uow.BraincellRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if braincell == nil {
		return nil, apperror.NewNotFound("braincell", "braincell not found")
	}
	if !braincell.IsOwnedBy(userId) {
		return nil, apperror.NewUnauthorized("")
	}

	return toBraincellResponse(braincell), nil
}

func (s *braincellService) vectorFor(braincell *entity.Braincell, values []float32) vectorindex.Vector {
	return vectorindex.Vector{
		ID:     braincell.Id,
		Values: values,
		Metadata: map[string]interface{}{
			vectorindex.MetadataUserID: braincell.UserId,
		},
	}
}

// publish never fails the request; the write has already been committed.
func (s *braincellService) publish(ctx context.Context, eventType string, braincell *entity.Braincell) {
	event := events.NewBraincellEvent(eventType, braincell.Id, braincell.UserId, braincell.Title)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(braincellModule, "failed to publish event", map[string]interface{}{
			"event_type":   eventType,
			"braincell_id": braincell.Id,
			"error":        err.Error(),
		})
	}
}

func toBraincellResponse(braincell *entity.Braincell) *dto.BraincellResponse {
	return &dto.BraincellResponse{
		Id:        braincell.Id,
		Title:     braincell.Title,
		Content:   braincell.Content,
		UserId:    braincell.UserId,
		CreatedAt: braincell.CreatedAt,
		UpdatedAt: braincell.UpdatedAt,
	}
}
