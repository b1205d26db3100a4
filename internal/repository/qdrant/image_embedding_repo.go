package qdrant

import (
	"context"

	"github.com/storeline-tech/go-backend/internal/cfg"
	"github.com/storeline-tech/go-backend/internal/domain"
	"github.com/qdrant/go-client/qdrant"
)

// ImageEmbeddingRepo хранит визуальные эмбеддинги: одна точка на изображение.
type ImageEmbeddingRepo struct {
	points pointsRepo
}

func NewImageEmbeddingRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *ImageEmbeddingRepo {
	return &ImageEmbeddingRepo{
		points: pointsRepo{client: client, name: cfg.ImageCollection},
	}
}

func (r *ImageEmbeddingRepo) Upsert(ctx context.Context, embeddings []domain.Embedding) error {
	return r.points.upsert(ctx, embeddings)
}

func (r *ImageEmbeddingRepo) DeleteByProduct(ctx context.Context, ownerID, productID int64) error {
	return r.points.deleteByFilter(ctx, ownerProductFilter(ownerID, productID))
}

func (r *ImageEmbeddingRepo) Query(ctx context.Context, ownerID int64, vector []float32, limit int, threshold float64) ([]domain.Match, error) {
	return r.points.query(ctx, ownerID, vector, limit, threshold)
}

// FetchByOwner возвращает все визуальные эмбеддинги владельца — вход
// ручного перебора при недоступном нативном поиске.
func (r *ImageEmbeddingRepo) FetchByOwner(ctx context.Context, ownerID int64) ([]domain.Embedding, error) {
	return r.points.scrollByOwner(ctx, ownerID)
}
