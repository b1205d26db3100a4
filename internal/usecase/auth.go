package usecase

import (
	"context"

	"github.com/storeline-tech/go-backend/pkg/e"
)

// resolveOwner проверяет, что вызывающий аккаунт вправе действовать от имени
// владельца: либо он сам владелец, либо делегирование подтверждает AccountRepository.
// Неавторизованное разрешение — жёсткая ошибка, прерывающая вызов целиком.
func resolveOwner(ctx context.Context, accounts AccountRepository, callerID, ownerID int64) (int64, error) {
	const op = "usecase.resolveOwner"

	if ownerID <= 0 {
		return 0, e.Wrap(op, e.ErrOwnerRequired)
	}

	if callerID == ownerID {
		return ownerID, nil
	}

	ok, err := accounts.CanManage(ctx, callerID, ownerID)
	if err != nil {
		return 0, e.Wrap(op, err)
	}
	if !ok {
		return 0, e.Wrap(op, e.ErrUnauthorized)
	}

	return ownerID, nil
}
