package repository

import (
	"context"

	"merac_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AddressRepository struct {
	db *pgxpool.Pool
}

func NewAddressRepository(db *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{db: db}
}

// получает депозитный адрес пользователя
func (r *AddressRepository) GetByUserID(ctx context.Context, userID string) (*domain.DepositAddress, error) {
	row := r.db.QueryRow(ctx, `
		SELECT user_id, address, created_at
		FROM user_addresses
		WHERE user_id = $1
	`, userID)

	var a domain.DepositAddress
	if err := row.Scan(&a.UserID, &a.Address, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// сохраняет депозитный адрес пользователя
func (r *AddressRepository) Save(ctx context.Context, userID, address string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_addresses (user_id, address)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET address = EXCLUDED.address
	`, userID, address)
	return err
}

// возвращает все адреса для цикла сверки депозитов
func (r *AddressRepository) GetAll(ctx context.Context) ([]domain.DepositAddress, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, address, created_at
		FROM user_addresses
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []domain.DepositAddress
	for rows.Next() {
		var a domain.DepositAddress
		if err := rows.Scan(&a.UserID, &a.Address, &a.CreatedAt); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}
