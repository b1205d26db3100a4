package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/storeline-tech/go-backend/internal/domain"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/storeline-tech/go-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	// embedBatchSize ограничивает число одновременных входов в одном
	// запросе к провайдеру эмбеддингов
	embedBatchSize = 5

	minPageSize = 50
	maxPageSize = 500
)

// EmbeddingUC реализует пайплайн генерации текстовых эмбеддингов каталога.
type EmbeddingUC struct {
	catalogRepo CatalogRepository
	accountRepo AccountRepository
	textRepo    TextEmbeddingRepository
	embedder    TextEmbedder
	runLogRepo  RunLogRepository
	producer    EventProducer
	logger      logger.Logger
	batchPause  time.Duration
}

func NewEmbeddingUC(
	catalogRepo CatalogRepository,
	accountRepo AccountRepository,
	textRepo TextEmbeddingRepository,
	embedder TextEmbedder,
	runLogRepo RunLogRepository,
	producer EventProducer,
	logger logger.Logger,
	batchPause time.Duration,
) *EmbeddingUC {
	return &EmbeddingUC{
		catalogRepo: catalogRepo,
		accountRepo: accountRepo,
		textRepo:    textRepo,
		embedder:    embedder,
		runLogRepo:  runLogRepo,
		producer:    producer,
		logger:      logger,
		batchPause:  batchPause,
	}
}

// GenerateTextEmbeddings обрабатывает одну страницу генерации текстовых
// эмбеддингов. Цикл по страницам ведёт вызывающая сторона: она передаёт
// NextOffset из ответа, пока HasMore не станет false. Ошибка одного товара
// не прерывает страницу — товар пропускается и отражается только в счётчике.
func (u *EmbeddingUC) GenerateTextEmbeddings(ctx context.Context, req *GenerateTextReq) (*GenerateTextRes, error) {
	const op = "EmbeddingUC.GenerateTextEmbeddings"

	startedAt := time.Now().UTC()

	ownerID, err := resolveOwner(ctx, u.accountRepo, req.CallerID, req.OwnerID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var res *GenerateTextRes
	if req.ProductID != nil {
		res, err = u.generateForProduct(ctx, ownerID, *req.ProductID, req.Offset)
	} else {
		res, err = u.generateForOwner(ctx, ownerID, req)
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	u.recordRun(ctx, NewEmbeddingRun(ownerID, req.ProductID, RunKindText, res.ProcessedCount, int(res.TotalProducts), startedAt))

	return res, nil
}

// generateForProduct пересоздаёт эмбеддинг ровно одного товара, игнорируя пагинацию.
func (u *EmbeddingUC) generateForProduct(ctx context.Context, ownerID, productID int64, offset int) (*GenerateTextRes, error) {
	product, err := u.catalogRepo.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	if err := u.textRepo.DeleteByProduct(ctx, ownerID, productID); err != nil {
		return nil, err
	}

	processed, err := u.embedBatch(ctx, []domain.Product{*product})
	if err != nil {
		return nil, err
	}

	return &GenerateTextRes{
		ProcessedCount: processed,
		TotalProducts:  1,
		HasMore:        false,
		NextOffset:     offset,
	}, nil
}

// generateForOwner обрабатывает страницу активных товаров владельца.
// Перед первой страницей (offset 0 или reset) старые строки владельца
// удаляются целиком; страницы-продолжения дописывают без очистки.
func (u *EmbeddingUC) generateForOwner(ctx context.Context, ownerID int64, req *GenerateTextReq) (*GenerateTextRes, error) {
	pageSize := clampPageSize(req.PageSize)

	total, err := u.catalogRepo.CountActiveProducts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Reset || req.Offset == 0 {
		if err := u.textRepo.DeleteByOwner(ctx, ownerID); err != nil {
			return nil, err
		}
	}

	products, err := u.catalogRepo.GetActiveProducts(ctx, ownerID, req.Offset, pageSize)
	if err != nil {
		return nil, err
	}

	processed := 0
	for start := 0; start < len(products); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(products) {
			end = len(products)
		}

		n, err := u.embedBatch(ctx, products[start:end])
		if err != nil {
			return nil, err
		}
		processed += n

		// Пауза между под-батчами сглаживает нагрузку на провайдера
		if end < len(products) {
			select {
			case <-time.After(u.batchPause):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	fetched := len(products)

	return &GenerateTextRes{
		ProcessedCount: processed,
		TotalProducts:  total,
		HasMore:        int64(req.Offset+fetched) < total,
		NextOffset:     req.Offset + fetched,
	}, nil
}

// embedBatch строит снапшоты под-батча, запрашивает эмбеддинги и вставляет
// успешные строки. Возвращает число вставленных. Ошибка конфигурации
// провайдера фатальна; остальные сбои батча деградируют в пропуск.
func (u *EmbeddingUC) embedBatch(ctx context.Context, products []domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	snapshots := make([]string, len(products))
	for i := range products {
		snapshots[i] = domain.BuildProductSnapshot(&products[i])
	}

	vectors, err := u.embedder.EmbedTexts(ctx, snapshots)
	if err != nil {
		if errors.Is(err, e.ErrEmbedderNotConfigured) {
			return 0, err
		}

		u.logger.Warnf("embed batch of %d failed, skipping: %v", len(products), err)
		return 0, nil
	}

	embeddings := make([]domain.Embedding, 0, len(products))
	for i := range products {
		if i >= len(vectors) || len(vectors[i]) == 0 {
			u.logger.Warnf("no vector for product %d, skipping", products[i].ID)
			continue
		}

		payload := domain.NewTextPayload(&products[i], len(snapshots[i]))
		embeddings = append(embeddings, *domain.NewEmbedding(uuid.NewString(), vectors[i], payload))
	}

	if len(embeddings) == 0 {
		return 0, nil
	}

	if err := u.textRepo.Upsert(ctx, embeddings); err != nil {
		return 0, err
	}

	return len(embeddings), nil
}

// recordRun пишет журнал прогона и публикует событие; обе операции best-effort.
func (u *EmbeddingUC) recordRun(ctx context.Context, run *EmbeddingRun) {
	if err := u.runLogRepo.Create(ctx, run); err != nil {
		u.logger.Warnf("failed to record embedding run: %v", err)
	}

	if err := u.producer.PublishRun(ctx, run); err != nil {
		u.logger.Warnf("failed to publish embedding run event: %v", err)
	}
}

// clampPageSize приводит размер страницы к допустимому диапазону [50, 500].
func clampPageSize(size int) int {
	if size < minPageSize {
		return minPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}
