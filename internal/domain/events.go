package domain

import "time"

// Тип платежного события
type PaymentEventType string

const (
	EventDepositConfirmed    PaymentEventType = "deposit_confirmed"
	EventWithdrawalRequested PaymentEventType = "withdrawal_requested"
	EventWithdrawalCompleted PaymentEventType = "withdrawal_completed"
	EventWithdrawalFailed    PaymentEventType = "withdrawal_failed"
)

// Платежное событие. Ядро публикует события в канал,
// транспортный слой (ws hub, админ-бот) сам решает что с ними делать.
type PaymentEvent struct {
	Type      PaymentEventType `json:"type"`
	UserID    string           `json:"user_id"`
	Amount    float64          `json:"amount"`
	TxID      string           `json:"txid,omitempty"`
	Address   string           `json:"address,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
