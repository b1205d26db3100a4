package qdrant

import (
	"context"

	"github.com/storeline-tech/go-backend/internal/cfg"
	"github.com/storeline-tech/go-backend/internal/domain"
	"github.com/qdrant/go-client/qdrant"
)

// TextEmbeddingRepo хранит текстовые эмбеддинги товаров: одна точка на товар.
type TextEmbeddingRepo struct {
	points pointsRepo
}

func NewTextEmbeddingRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *TextEmbeddingRepo {
	return &TextEmbeddingRepo{
		points: pointsRepo{client: client, name: cfg.TextCollection},
	}
}

func (t *TextEmbeddingRepo) Upsert(ctx context.Context, embeddings []domain.Embedding) error {
	return t.points.upsert(ctx, embeddings)
}

// DeleteByOwner удаляет все текстовые эмбеддинги владельца перед полной
// перегенерацией каталога.
func (t *TextEmbeddingRepo) DeleteByOwner(ctx context.Context, ownerID int64) error {
	return t.points.deleteByFilter(ctx, ownerFilter(ownerID))
}

func (t *TextEmbeddingRepo) DeleteByProduct(ctx context.Context, ownerID, productID int64) error {
	return t.points.deleteByFilter(ctx, ownerProductFilter(ownerID, productID))
}

func (t *TextEmbeddingRepo) Query(ctx context.Context, ownerID int64, vector []float32, limit int, threshold float64) ([]domain.Match, error) {
	return t.points.query(ctx, ownerID, vector, limit, threshold)
}
