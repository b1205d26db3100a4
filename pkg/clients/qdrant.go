package clients

import (
	"context"
	"fmt"

	config "github.com/storeline-tech/go-backend/internal/cfg"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

type QdrantClient struct {
	Client *qdrant.Client
	cfg    *config.QdrantCfg
}

func NewQdrantClient(cfg *config.QdrantCfg) (*QdrantClient, error) {
	qdrantClient, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.ApiKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &QdrantClient{
		Client: qdrantClient,
		cfg:    cfg,
	}, nil
}

// Ping проверяет доступность Qdrant.
func (q *QdrantClient) Ping(ctx context.Context) error {
	if _, err := q.Client.HealthCheck(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// EnsureCollections создаёт обе коллекции эмбеддингов, если их ещё нет.
// Текстовое и визуальное пространства живут в разных коллекциях и
// никогда не сравниваются между собой.
func EnsureCollections(ctx context.Context, client *QdrantClient) error {
	collections := []struct {
		name string
		size uint64
	}{
		{client.cfg.TextCollection, client.cfg.TextVectorSize},
		{client.cfg.ImageCollection, client.cfg.ImageVectorSize},
	}

	for _, c := range collections {
		exists, err := client.Client.CollectionExists(ctx, c.name)
		if err != nil {
			return fmt.Errorf("failed to check collection %s: %w", c.name, err)
		}

		if exists {
			continue
		}

		if err := client.Client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: c.name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     c.size,
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", c.name, err)
		}
	}

	return nil
}
