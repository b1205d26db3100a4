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

// ImageEmbeddingUC реализует пайплайн генерации визуальных эмбеддингов
// изображений одного товара.
type ImageEmbeddingUC struct {
	catalogRepo CatalogRepository
	accountRepo AccountRepository
	imageRepo   ImageEmbeddingRepository
	fetcher     ImageFetcher
	embedder    ImageEmbedder
	runLogRepo  RunLogRepository
	producer    EventProducer
	logger      logger.Logger
}

func NewImageEmbeddingUC(
	catalogRepo CatalogRepository,
	accountRepo AccountRepository,
	imageRepo ImageEmbeddingRepository,
	fetcher ImageFetcher,
	embedder ImageEmbedder,
	runLogRepo RunLogRepository,
	producer EventProducer,
	logger logger.Logger,
) *ImageEmbeddingUC {
	return &ImageEmbeddingUC{
		catalogRepo: catalogRepo,
		accountRepo: accountRepo,
		imageRepo:   imageRepo,
		fetcher:     fetcher,
		embedder:    embedder,
		runLogRepo:  runLogRepo,
		producer:    producer,
		logger:      logger,
	}
}

// GenerateImageEmbeddings пересоздаёт все строки визуальных эмбеддингов товара:
// старый набор удаляется целиком, затем каждое изображение загружается,
// векторизуется и вставляется отдельной строкой. Сбой одного изображения
// логируется и пропускается; товар без изображений — валидный нулевой результат.
func (u *ImageEmbeddingUC) GenerateImageEmbeddings(ctx context.Context, req *GenerateImagesReq) (*GenerateImagesRes, error) {
	const op = "ImageEmbeddingUC.GenerateImageEmbeddings"

	startedAt := time.Now().UTC()

	ownerID, err := resolveOwner(ctx, u.accountRepo, req.CallerID, req.OwnerID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := u.catalogRepo.GetProduct(ctx, ownerID, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Очистка до вставок: старые строки не должны пережить регенерацию
	if err := u.imageRepo.DeleteByProduct(ctx, ownerID, product.ID); err != nil {
		return nil, e.Wrap(op, err)
	}

	total := len(product.Images)
	processed := 0

	for _, imageURL := range product.Images {
		data, err := u.fetcher.Fetch(ctx, imageURL)
		if err != nil {
			u.logger.Warnf("fetch image %s for product %d failed, skipping: %v", imageURL, product.ID, err)
			continue
		}

		vec, err := u.embedder.VectorizeImage(ctx, data)
		if err != nil {
			if errors.Is(err, e.ErrImageModelNotConfigured) {
				return nil, e.Wrap(op, err)
			}

			u.logger.Warnf("vectorize image %s for product %d failed, skipping: %v", imageURL, product.ID, err)
			continue
		}

		if len(vec.Vector) == 0 {
			u.logger.Warnf("empty vector for image %s of product %d, skipping", imageURL, product.ID)
			continue
		}

		payload := domain.NewImagePayload(ownerID, product.ID, imageURL, vec.ModelVersion)
		embedding := domain.NewEmbedding(uuid.NewString(), vec.Vector, payload)

		// Вставка сразу по готовности, чтобы сбой следующего изображения
		// не терял уже успешные строки
		if err := u.imageRepo.Upsert(ctx, []domain.Embedding{*embedding}); err != nil {
			u.logger.Warnf("insert embedding for image %s of product %d failed, skipping: %v", imageURL, product.ID, err)
			continue
		}

		processed++
	}

	pid := product.ID
	u.recordRun(ctx, NewEmbeddingRun(ownerID, &pid, RunKindImage, processed, total, startedAt))

	return &GenerateImagesRes{
		ProcessedImages: processed,
		TotalImages:     total,
	}, nil
}

func (u *ImageEmbeddingUC) recordRun(ctx context.Context, run *EmbeddingRun) {
	if err := u.runLogRepo.Create(ctx, run); err != nil {
		u.logger.Warnf("failed to record embedding run: %v", err)
	}

	if err := u.producer.PublishRun(ctx, run); err != nil {
		u.logger.Warnf("failed to publish embedding run event: %v", err)
	}
}
