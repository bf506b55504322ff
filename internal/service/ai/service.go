package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/medassist/medchat/internal/config"
	"github.com/medassist/medchat/internal/logger"
)

var ErrEmptyQuestion = errors.New("question is empty")

// Answer is one generated reply and the sources it was grounded on.
type Answer struct {
	Answer      string   `json:"answer"`
	ContextUsed []string `json:"context_used"`
}

// Service answers medical questions through an eino chain.
type Service struct {
	retriever retriever.Retriever
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the Ark chat model from cfg and compiles the chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, nil)
}

// NewServiceWithModel compiles the chain over an existing model. r may be nil.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, r retriever.Retriever) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(SystemPrompt),
		schema.UserMessage("{input}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		retriever: r,
		chain:     runnable,
	}, nil
}

// Answer generates a reply for one standalone question. No history is kept.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}

	passages, sources, err := s.retrieve(ctx, question)
	if err != nil {
		return Answer{}, err
	}

	response, err := s.chain.Invoke(ctx, map[string]any{
		"context": passages,
		"input":   question,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("failed to run AI chain: %w", err)
	}

	logger.InfoCF("ai", "generated answer", map[string]any{
		"question_len": len(question),
		"answer_len":   len(response.Content),
		"sources":      len(sources),
	})
	return Answer{Answer: response.Content, ContextUsed: sources}, nil
}

// HealthCheck runs a probe question through the chain.
func (s *Service) HealthCheck(ctx context.Context) bool {
	answer, err := s.Answer(ctx, "test")
	if err != nil {
		logger.WarnCF("ai", "health check failed", map[string]any{"error": err.Error()})
		return false
	}
	return answer.Answer != ""
}

func (s *Service) retrieve(ctx context.Context, question string) (string, []string, error) {
	sources := []string{}
	if s.retriever == nil {
		return noContext, sources, nil
	}

	docs, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("failed to retrieve context: %w", err)
	}
	if len(docs) == 0 {
		return noContext, sources, nil
	}

	passages := make([]string, 0, len(docs))
	for _, doc := range docs {
		passages = append(passages, doc.Content)
		if src, ok := doc.MetaData["source"].(string); ok && src != "" {
			sources = append(sources, src)
		}
	}
	return strings.Join(passages, "\n\n"), sources, nil
}
