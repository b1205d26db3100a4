package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/storeline-tech/go-backend/internal/cfg"
	"github.com/storeline-tech/go-backend/internal/usecase"
	"github.com/storeline-tech/go-backend/pkg/clients"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/storeline-tech/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

// ProductCacheRepo кэширует витринные поля товаров для гидрации результатов
// поиска. Ключи скоупятся на владельца, чтобы витрины аккаунтов не смешивались.
type ProductCacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewProductCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *ProductCacheRepo {
	return &ProductCacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// productCacheModel — сериализуемое представление товара в кэше.
type productCacheModel struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	PriceCents  int64    `json:"price_cents"`
	Stock       int32    `json:"stock"`
	Images      []string `json:"images"`
}

// GetProducts возвращает закэшированные товары по ID, игнорируя промахи и логируя их
func (r *ProductCacheRepo) GetProducts(ctx context.Context, ownerID int64, ids []int64) (map[int64]usecase.ProductInfo, error) {
	keys := r.buildKeys(ownerID, ids)

	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Warnf("Redis MGET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[int64]usecase.ProductInfo, len(values))
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
		}

		if data == nil {
			continue // cache miss
		}

		var model productCacheModel
		if err := json.Unmarshal(data, &model); err != nil {
			r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if model.ID != ids[i] {
			r.logger.Warnf("Cache ID mismatch: key_id: %d, model_id: %d", ids[i], model.ID)
			if err := r.client.Client.Del(context.Background(), keys[i]).Err(); err != nil {
				r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
			}
			continue // cache miss
		}

		result[ids[i]] = usecase.ProductInfo{
			ID:          model.ID,
			Name:        model.Name,
			Description: model.Description,
			Category:    model.Category,
			PriceCents:  model.PriceCents,
			Stock:       model.Stock,
			Images:      model.Images,
		}
	}

	return result, nil
}

// SetProducts атомарно кэширует несколько товаров с заданным TTL.
// Игнорирует ошибки сериализации/записи, логируя их.
func (r *ProductCacheRepo) SetProducts(ctx context.Context, ownerID int64, products []usecase.ProductInfo) error {
	pipeline := r.client.Client.Pipeline()
	for _, info := range products {
		data, err := json.Marshal(productCacheModel{
			ID:          info.ID,
			Name:        info.Name,
			Description: info.Description,
			Category:    info.Category,
			PriceCents:  info.PriceCents,
			Stock:       info.Stock,
			Images:      info.Images,
		})
		if err != nil {
			r.logger.Warnf("Failed to marshal product for caching (Product ID: %d): %v", info.ID, e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		pipeline.Set(ctx, r.productKey(ownerID, info.ID), data, r.cfg.ProductTTL)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		r.logger.Warnf("Cache pipeline failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// buildKeys формирует Redis-ключи из ID товаров владельца
func (r *ProductCacheRepo) buildKeys(ownerID int64, ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.productKey(ownerID, id)
	}

	return keys
}

// productKey возвращает Redis-ключ для одного товара
func (r *ProductCacheRepo) productKey(ownerID, productID int64) string {
	return fmt.Sprintf("product:%d:%d", ownerID, productID)
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
