package domain

import "time"

// Депозитный адрес пользователя в сети TRON
type DepositAddress struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Входящее пополнение USDT
type Deposit struct {
	ID          int64         `db:"id" json:"id"`
	UserID      string        `db:"user_id" json:"user_id"`
	Address     string        `db:"address" json:"address"`
	TxID        string        `db:"txid" json:"txid"`
	Amount      float64       `db:"amount" json:"amount"`
	Status      DepositStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	ConfirmedAt *time.Time    `db:"confirmed_at" json:"confirmed_at,omitempty"`
}

// Статус обработки пополнения
type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "pending"
	DepositStatusConfirmed DepositStatus = "confirmed"
)

// Исходящий вывод USDT на внешний адрес
type Withdrawal struct {
	ID          int64            `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"user_id"`
	ToAddress   string           `db:"to_address" json:"to_address"`
	Amount      float64          `db:"amount" json:"amount"`
	Fee         float64          `db:"fee" json:"fee"`
	NetAmount   float64          `db:"net_amount" json:"net_amount"`
	TxID        string           `db:"txid" json:"txid,omitempty"`
	Status      WithdrawalStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
}

// Статус вывода
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusFailed    WithdrawalStatus = "failed"
)

// Баланс пользователя в USDT.
// LockedBalance - средства, зарезервированные под выводы в обработке.
type Balance struct {
	UserID        string    `db:"user_id" json:"user_id"`
	Balance       float64   `db:"balance" json:"balance"`
	LockedBalance float64   `db:"locked_balance" json:"locked_balance"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// доступные для вывода средства
func (b Balance) Available() float64 {
	return b.Balance - b.LockedBalance
}
