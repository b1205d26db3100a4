// Package embeddings реализует клиента текстового эмбеддера
// (OpenAI-совместимый endpoint /v1/embeddings).
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/storeline-tech/go-backend/internal/cfg"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/storeline-tech/go-backend/pkg/logger"
)

// Client — клиент текстового эмбеддера. Без состояния, кроме HTTP-клиента;
// безопасен для конкурентного использования.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg *cfg.EmbedderCfg, logger logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.ApiKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// EmbedTexts запрашивает эмбеддинги для набора входов одним вызовом.
// Результат выровнен по входам через поле index ответа; вход, для которого
// провайдер не вернул вектор, остаётся nil — вызывающая сторона решает,
// что с ним делать.
func (c *Client) EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error) {
	const op = "embeddings.Client.EmbedTexts"

	if c.apiKey == "" {
		return nil, e.Wrap(op, e.ErrEmbedderNotConfigured)
	}

	if len(inputs) == 0 {
		return [][]float32{}, nil
	}

	// Провайдер отвергает полностью пустые входы
	clean := make([]string, len(inputs))
	for i := range inputs {
		s := strings.TrimSpace(inputs[i])
		if s == "" {
			s = " "
		}
		clean[i] = s
	}

	reqBody, err := json.Marshal(embeddingsRequest{
		Model: c.model,
		Input: clean,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, e.Wrap(op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	var result embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, e.Wrap(op, err)
	}

	out := make([][]float32, len(clean))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(out) {
			c.logger.Warnf("embeddings response index %d out of range (batch of %d)", d.Index, len(clean))
			continue
		}

		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		out[d.Index] = vec
	}

	return out, nil
}
