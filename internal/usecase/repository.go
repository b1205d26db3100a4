package usecase

import (
	"context"

	"github.com/storeline-tech/go-backend/internal/domain"
)

// CatalogRepository — читающий доступ к каталогу товаров владельца.
type CatalogRepository interface {
	CountActiveProducts(ctx context.Context, ownerID int64) (int64, error)
	// GetActiveProducts возвращает страницу активных товаров со стабильным
	// порядком (created_at DESC, id DESC), с вариантами и изображениями.
	GetActiveProducts(ctx context.Context, ownerID int64, offset, limit int) ([]domain.Product, error)
	GetProduct(ctx context.Context, ownerID, productID int64) (*domain.Product, error)
	GetProductsInfo(ctx context.Context, ownerID int64, ids []int64) ([]ProductInfo, error)
}

// AccountRepository отвечает на вопрос, может ли вызывающий аккаунт
// действовать от имени владельца.
type AccountRepository interface {
	CanManage(ctx context.Context, callerID, ownerID int64) (bool, error)
}

// TextEmbeddingRepository — строки текстовых эмбеддингов (одна на товар).
type TextEmbeddingRepository interface {
	Upsert(ctx context.Context, embeddings []domain.Embedding) error
	DeleteByOwner(ctx context.Context, ownerID int64) error
	DeleteByProduct(ctx context.Context, ownerID, productID int64) error
	Query(ctx context.Context, ownerID int64, vector []float32, limit int, threshold float64) ([]domain.Match, error)
}

// ImageEmbeddingRepository — строки визуальных эмбеддингов (одна на изображение).
type ImageEmbeddingRepository interface {
	Upsert(ctx context.Context, embeddings []domain.Embedding) error
	DeleteByProduct(ctx context.Context, ownerID, productID int64) error
	Query(ctx context.Context, ownerID int64, vector []float32, limit int, threshold float64) ([]domain.Match, error)
	// FetchByOwner возвращает все строки владельца с векторами и payload —
	// вход ручного перебора, когда нативный запрос похожести недоступен.
	FetchByOwner(ctx context.Context, ownerID int64) ([]domain.Embedding, error)
}

// CacheRepository — кэш отображаемых полей товаров.
type CacheRepository interface {
	GetProducts(ctx context.Context, ownerID int64, ids []int64) (map[int64]ProductInfo, error)
	SetProducts(ctx context.Context, ownerID int64, products []ProductInfo) error
}

// RunLogRepository — журнал прогонов пайплайнов.
type RunLogRepository interface {
	Create(ctx context.Context, run *EmbeddingRun) error
}
