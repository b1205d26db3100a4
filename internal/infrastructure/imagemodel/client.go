// Package imagemodel реализует клиента сервиса извлечения визуальных
// признаков изображений.
package imagemodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/storeline-tech/go-backend/internal/cfg"
	"github.com/storeline-tech/go-backend/internal/usecase"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/storeline-tech/go-backend/pkg/jitter"
	"github.com/storeline-tech/go-backend/pkg/logger"
)

// Client — клиент image-модели. Загрузка модели на стороне сервиса дорогая,
// поэтому успешный прогрев выполняется один раз на процесс и переиспользуется
// всеми вызовами; число одновременных инференсов ограничено семафором.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	logger     logger.Logger

	warmupMu sync.Mutex
	ready    bool
	sem      chan struct{}
}

func NewClient(cfg *cfg.ImageModelCfg, logger logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		logger:     logger,
		sem:        make(chan struct{}, cfg.MaxConcurrent),
	}
}

type vectorizeResponse struct {
	Vector       []float32 `json:"vector"`
	ModelVersion string    `json:"model_version"`
}

// VectorizeImage возвращает визуальный эмбеддинг изображения.
// Повторяет временные сбои с экспоненциальной задержкой и джиттером.
func (c *Client) VectorizeImage(ctx context.Context, data []byte) (*usecase.VectorizeRes, error) {
	const (
		op         = "imagemodel.Client.VectorizeImage"
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	if c.baseURL == "" {
		return nil, e.Wrap(op, e.ErrImageModelNotConfigured)
	}

	if err := c.ensureReady(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		res, err := c.vectorizeOnce(ctx, data)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if attempt == c.maxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(baseJitter, maxJitter, attempt, jitter.DefaultJitter)
		c.logger.Warnf("vectorization failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)

		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return nil, e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", c.maxRetries, lastErr))
}

// ensureReady прогревает модель перед первым инференсом. Успех запоминается
// на время жизни процесса; сбой прогрева фатален только для текущего вызова,
// следующий вызов пробует прогреться заново.
func (c *Client) ensureReady(ctx context.Context) error {
	c.warmupMu.Lock()
	defer c.warmupMu.Unlock()

	if c.ready {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/warmup", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("warmup returned status %d", resp.StatusCode)
	}

	c.ready = true
	c.logger.Infof("image model warmed up")

	return nil
}

func (c *Client) vectorizeOnce(ctx context.Context, data []byte) (*usecase.VectorizeRes, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vectorize", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result vectorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if len(result.Vector) == 0 {
		return nil, e.ErrEmptyVector
	}

	return usecase.NewVectorizeRes(result.Vector, result.ModelVersion), nil
}
