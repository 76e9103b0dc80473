package repository

import (
	"context"
	"errors"

	"merac_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInsufficientBalance = errors.New("insufficient available balance")

type BalanceRepository struct {
	db *pgxpool.Pool
}

func NewBalanceRepository(db *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// баланс пользователя; отсутствие строки - нулевой баланс
func (r *BalanceRepository) Get(ctx context.Context, userID string) (*domain.Balance, error) {
	row := r.db.QueryRow(ctx, `
		SELECT user_id, balance, locked_balance, updated_at
		FROM user_balances
		WHERE user_id = $1
	`, userID)

	var b domain.Balance
	if err := row.Scan(&b.UserID, &b.Balance, &b.LockedBalance, &b.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return &domain.Balance{UserID: userID}, nil
		}
		return nil, err
	}
	return &b, nil
}

// Credit зачисляет сумму на баланс (подтвержденный депозит)
func (r *BalanceRepository) Credit(ctx context.Context, userID string, amount float64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_balances (user_id, balance, locked_balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = user_balances.balance + EXCLUDED.balance, updated_at = NOW()
	`, userID, amount)
	return err
}

// Lock резервирует сумму под вывод: списывает с баланса и замораживает.
// Условие на доступный остаток проверяется тем же UPDATE,
// так что гонка двух заявок не уведет баланс в минус.
func (r *BalanceRepository) Lock(ctx context.Context, userID string, amount float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_balances
		SET balance = balance - $2, locked_balance = locked_balance + $2, updated_at = NOW()
		WHERE user_id = $1 AND balance - locked_balance >= $2
	`, userID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// ReleaseLocked освобождает замороженную сумму после успешного перевода
func (r *BalanceRepository) ReleaseLocked(ctx context.Context, userID string, amount float64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE user_balances
		SET locked_balance = locked_balance - $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	return err
}

// Refund возвращает сумму на баланс после неуспешного перевода
func (r *BalanceRepository) Refund(ctx context.Context, userID string, amount float64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE user_balances
		SET balance = balance + $2, locked_balance = locked_balance - $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	return err
}
