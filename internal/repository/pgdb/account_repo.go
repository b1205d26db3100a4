package pgdb

import (
	"context"
	"errors"

	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// AccountRepo проверяет права аккаунтов поверх PostgreSQL.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// CanManage сообщает, вправе ли аккаунт caller управлять каталогом owner.
// Право есть у администраторов и у менеджеров, привязанных к владельцу.
func (a *AccountRepo) CanManage(ctx context.Context, callerID, ownerID int64) (bool, error) {
	query := `
		SELECT role, managed_owner_id FROM accounts
		WHERE id = $1 AND is_active;
	`

	var role string
	var managedOwnerID *int64
	err := a.pool.QueryRow(ctx, query, callerID).Scan(&role, &managedOwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	switch role {
	case "admin":
		return true, nil
	case "manager":
		return managedOwnerID != nil && *managedOwnerID == ownerID, nil
	default:
		return false, nil
	}
}
