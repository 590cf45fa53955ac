package services

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// maxEmbeddingInput keeps requests under the embedding model's token limit.
const maxEmbeddingInput = 40000

type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type geminiEmbeddingService struct {
	client     *genai.Client
	embedModel string
	maxRetries int
	retryDelay time.Duration
}

func NewGeminiEmbeddingService(ctx context.Context, apiKey, embedModel string) (EmbeddingService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiEmbeddingService{
		client:     client,
		embedModel: embedModel,
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}, nil
}

func (g *geminiEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbeddingInput {
		text = text[:maxEmbeddingInput]
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
		if err == nil {
			if result == nil || len(result.Embeddings) == 0 {
				return nil, fmt.Errorf("empty embedding result")
			}
			return result.Embeddings[0].Values, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(g.retryDelay * time.Duration(attempt)):
		}
	}

	return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", g.maxRetries, lastErr)
}
