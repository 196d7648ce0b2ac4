package service

import (
	"context"
	"fmt"
	"strings"

	"braincells-be/internal/apperror"
	"braincells-be/internal/constant"
	"braincells-be/internal/dto"
	"braincells-be/internal/entity"
	"braincells-be/internal/pkg/logger"
	"braincells-be/internal/repository/specification"
	"braincells-be/internal/repository/unitofwork"
	"braincells-be/pkg/embedding"
	"braincells-be/pkg/llm"
	"braincells-be/pkg/vectorindex"
)

const chatModule = "ChatService"

type IChatService interface {
	// Chat returns an open completion stream. Every error returned here
	// happens before any output is produced.
	Chat(ctx context.Context, userId string, req *dto.ChatRequest) (llm.Stream, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	persona           string
	logger            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	persona string,
	logger logger.ILogger,
) IChatService {
	if persona == "" {
		persona = constant.DefaultChatPersona
	}
	return &chatService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		persona:           persona,
		logger:            logger,
	}
}

func (s *chatService) Chat(ctx context.Context, userId string, req *dto.ChatRequest) (llm.Stream, error) {
	if userId == "" {
		return nil, apperror.NewUnauthorized("")
	}
	if len(req.Messages) == 0 {
		return nil, apperror.NewInvalidInput("messages", "")
	}

	history := truncateHistory(req.Messages, constant.ChatHistoryWindow)

	values, err := s.embeddingProvider.Generate(ctx, joinContents(history))
	if err != nil {
		return nil, fmt.Errorf("embed chat history: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	matches, err := uow.VectorIndex().Query(ctx, vectorindex.QueryRequest{
		Vector: values,
		TopK:   constant.ChatRetrievalTopK,
		Filter: vectorindex.OwnerFilter(userId),
	})
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	braincells, err := s.fetchMatches(ctx, uow, userId, matches)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(chatModule, "retrieved context", map[string]interface{}{
		"user_id":    userId,
		"messages":   len(history),
		"matches":    len(matches),
		"braincells": len(braincells),
	})

	prompt := make([]llm.Message, 0, len(history)+1)
	prompt = append(prompt, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: buildSystemPrompt(s.persona, braincells),
	})
	for _, m := range history {
		prompt = append(prompt, llm.Message{Role: m.Role, Content: m.Content})
	}

	stream, err := s.llmProvider.ChatStream(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("open completion stream: %w", err)
	}
	return stream, nil
}

// fetchMatches loads the matched braincells in match order. The owner filter
// is applied again here so a stale or foreign index entry never reaches the
// prompt.
func (s *chatService) fetchMatches(ctx context.Context, uow unitofwork.UnitOfWork, userId string, matches []vectorindex.Match) ([]*entity.Braincell, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}

	found, err := uow.BraincellRepository().FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("fetch matched braincells: %w", err)
	}

	byId := make(map[string]*entity.Braincell, len(found))
	for _, b := range found {
		byId[b.Id] = b
	}

	ordered := make([]*entity.Braincell, 0, len(found))
	for _, id := range ids {
		if b, ok := byId[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered, nil
}

func truncateHistory(messages []dto.ChatMessage, window int) []dto.ChatMessage {
	if len(messages) <= window {
		return messages
	}
	return messages[len(messages)-window:]
}

func joinContents(messages []dto.ChatMessage) string {
	contents := make([]string, len(messages))
	for i, m := range messages {
		contents[i] = m.Content
	}
	return strings.Join(contents, "\n")
}

func buildSystemPrompt(persona string, braincells []*entity.Braincell) string {
	blocks := make([]string, len(braincells))
	for i, b := range braincells {
		blocks[i] = fmt.Sprintf("Title: %s\n\nContent:\n%s", b.Title, b.Content)
	}
	return persona + constant.ChatContextHeader + strings.Join(blocks, "\n\n")
}
