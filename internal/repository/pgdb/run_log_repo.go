package pgdb

import (
	"context"

	"github.com/storeline-tech/go-backend/internal/usecase"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// RunLogRepo пишет журнал прогонов генерации эмбеддингов.
type RunLogRepo struct {
	pool *pgxpool.Pool
}

func NewRunLogRepo(pool *pgxpool.Pool) *RunLogRepo {
	return &RunLogRepo{pool: pool}
}

// Create фиксирует завершённый прогон, проставляя присвоенный ID.
func (r *RunLogRepo) Create(ctx context.Context, run *usecase.EmbeddingRun) error {
	query := `
		INSERT INTO embedding_runs (owner_id, product_id, kind, processed, total, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`

	if err := r.pool.QueryRow(ctx, query,
		run.OwnerID,
		run.ProductID,
		run.Kind,
		run.Processed,
		run.Total,
		run.StartedAt,
		run.FinishedAt,
	).Scan(&run.ID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
