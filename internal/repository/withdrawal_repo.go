package repository

import (
	"context"
	"time"

	"merac_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// создает заявку на вывод в статусе pending
func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO withdrawals (user_id, to_address, amount, fee, net_amount, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id, status, created_at
	`, w.UserID, w.ToAddress, w.Amount, w.Fee, w.NetAmount).Scan(&w.ID, &w.Status, &w.CreatedAt)
}

// ожидающие выводы, старые первыми
func (r *WithdrawalRepository) GetPending(ctx context.Context, limit int) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, to_address, amount, fee, net_amount, txid, status, created_at, processed_at
		FROM withdrawals
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

// помечает вывод завершенным
func (r *WithdrawalRepository) MarkCompleted(ctx context.Context, id int64, txid string) error {
	now := time.Now()
	_, err := r.db.Exec(ctx, `
		UPDATE withdrawals SET status = 'completed', txid = $2, processed_at = $3 WHERE id = $1
	`, id, txid, now)
	return err
}

// помечает вывод неуспешным
func (r *WithdrawalRepository) MarkFailed(ctx context.Context, id int64) error {
	now := time.Now()
	_, err := r.db.Exec(ctx, `
		UPDATE withdrawals SET status = 'failed', processed_at = $2 WHERE id = $1
	`, id, now)
	return err
}

// выводы пользователя, новые первыми
func (r *WithdrawalRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, to_address, amount, fee, net_amount, txid, status, created_at, processed_at
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

func scanWithdrawals(rows pgx.Rows) ([]domain.Withdrawal, error) {
	var withdrawals []domain.Withdrawal
	for rows.Next() {
		var w domain.Withdrawal
		if err := rows.Scan(&w.ID, &w.UserID, &w.ToAddress, &w.Amount, &w.Fee, &w.NetAmount, &w.TxID, &w.Status, &w.CreatedAt, &w.ProcessedAt); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}
