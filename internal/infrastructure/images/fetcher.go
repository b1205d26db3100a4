// Package images загружает байты изображений товаров: ключи объектов
// резолвятся через MinIO, абсолютные URL — напрямую по HTTP.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storeline-tech/go-backend/internal/cfg"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// maxImageSize ограничивает размер скачиваемого изображения
const maxImageSize = 15 << 20

// Fetcher реализует usecase.ImageFetcher.
type Fetcher struct {
	mc         *minio.Client
	cfg        *cfg.MinIOCfg
	httpClient *http.Client
}

func NewFetcher(mc *minio.Client, cfg *cfg.MinIOCfg) *Fetcher {
	return &Fetcher{
		mc:  mc,
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch возвращает байты изображения по ссылке. Абсолютные HTTP(S)-URL
// скачиваются напрямую, всё остальное трактуется как ключ объекта в бакете.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return f.fetchHTTP(ctx, ref)
	}

	return f.fetchObject(ctx, ref)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if len(data) > maxImageSize {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
	}

	return data, nil
}

func (f *Fetcher) fetchObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := f.mc.GetObject(ctx, f.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, maxImageSize+1))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if len(data) > maxImageSize {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
	}

	return data, nil
}
