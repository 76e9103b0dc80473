package repository

import (
	"context"

	"merac_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DepositRepository struct {
	db *pgxpool.Pool
}

func NewDepositRepository(db *pgxpool.Pool) *DepositRepository {
	return &DepositRepository{db: db}
}

// создает запись депозита; повторный txid молча игнорируется
func (r *DepositRepository) Create(ctx context.Context, d *domain.Deposit) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO deposits (user_id, address, txid, amount, status, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (txid) DO NOTHING
		RETURNING id, created_at
	`, d.UserID, d.Address, d.TxID, d.Amount, d.Status, d.ConfirmedAt).Scan(&d.ID, &d.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil
	}
	return err
}

// сумма подтвержденных депозитов пользователя
func (r *DepositRepository) ConfirmedSum(ctx context.Context, userID string) (float64, error) {
	var sum float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM deposits
		WHERE user_id = $1 AND status = 'confirmed'
	`, userID).Scan(&sum)
	return sum, err
}

// депозиты пользователя, новые первыми
func (r *DepositRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Deposit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, address, txid, amount, status, created_at, confirmed_at
		FROM deposits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		var d domain.Deposit
		if err := rows.Scan(&d.ID, &d.UserID, &d.Address, &d.TxID, &d.Amount, &d.Status, &d.CreatedAt, &d.ConfirmedAt); err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

// проверяет, обрабатывалась ли уже транзакция
func (r *DepositRepository) TxIDExists(ctx context.Context, txid string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM deposits WHERE txid = $1)
	`, txid).Scan(&exists)
	return exists, err
}
