package service

import (
	"context"
	"errors"
	"time"

	"merac_backend/internal/domain"
	"merac_backend/internal/logger"
	"merac_backend/internal/repository"
	"merac_backend/internal/tron"
)

var (
	ErrBelowMinimum = errors.New("amount below minimum withdrawal")
	ErrFeeExceeds   = errors.New("amount does not cover the network fee")
	ErrInsufficient = errors.New("insufficient balance")
)

// хранилище депозитных адресов
type AddressStore interface {
	GetByUserID(ctx context.Context, userID string) (*domain.DepositAddress, error)
	Save(ctx context.Context, userID, address string) error
	GetAll(ctx context.Context) ([]domain.DepositAddress, error)
}

// хранилище депозитов
type DepositStore interface {
	Create(ctx context.Context, d *domain.Deposit) error
	ConfirmedSum(ctx context.Context, userID string) (float64, error)
	TxIDExists(ctx context.Context, txid string) (bool, error)
	GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Deposit, error)
}

// хранилище выводов
type WithdrawalStore interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	GetPending(ctx context.Context, limit int) ([]domain.Withdrawal, error)
	MarkCompleted(ctx context.Context, id int64, txid string) error
	MarkFailed(ctx context.Context, id int64) error
	GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error)
}

// хранилище балансов
type BalanceStore interface {
	Get(ctx context.Context, userID string) (*domain.Balance, error)
	Credit(ctx context.Context, userID string, amount float64) error
	Lock(ctx context.Context, userID string, amount float64) error
	ReleaseLocked(ctx context.Context, userID string, amount float64) error
	Refund(ctx context.Context, userID string, amount float64) error
}

// PaymentService обслуживает депозитный баланс: адреса, заявки на вывод,
// история операций. Сами переводы выполняет Reconciler.
type PaymentService struct {
	addresses   AddressStore
	deposits    DepositStore
	withdrawals WithdrawalStore
	balances    BalanceStore

	fee           float64
	minWithdrawal float64
	events        chan<- domain.PaymentEvent
}

func NewPaymentService(
	addresses AddressStore,
	deposits DepositStore,
	withdrawals WithdrawalStore,
	balances BalanceStore,
	fee, minWithdrawal float64,
	events chan<- domain.PaymentEvent,
) *PaymentService {
	return &PaymentService{
		addresses:     addresses,
		deposits:      deposits,
		withdrawals:   withdrawals,
		balances:      balances,
		fee:           fee,
		minWithdrawal: minWithdrawal,
		events:        events,
	}
}

// DepositAddress возвращает депозитный адрес пользователя,
// создавая его при первом обращении
func (s *PaymentService) DepositAddress(ctx context.Context, userID string) (*domain.DepositAddress, error) {
	existing, err := s.addresses.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	address := tron.GenerateUserAddress(userID)
	if err := s.addresses.Save(ctx, userID, address); err != nil {
		return nil, err
	}
	logger.Info("deposit address assigned", "user_id", userID, "address", address)
	return &domain.DepositAddress{UserID: userID, Address: address, CreatedAt: time.Now()}, nil
}

// Balance возвращает баланс пользователя
func (s *PaymentService) Balance(ctx context.Context, userID string) (*domain.Balance, error) {
	return s.balances.Get(ctx, userID)
}

// RequestWithdrawal ставит вывод в очередь обработки.
// Проверки идут в фиксированном порядке: формат адреса, минимальная
// сумма, доступный остаток, покрытие комиссии. Сумма сразу
// резервируется на балансе; деньги уходят позже, в цикле Reconciler.
func (s *PaymentService) RequestWithdrawal(ctx context.Context, userID, toAddress string, amount float64) (*domain.Withdrawal, error) {
	if !tron.IsValidAddress(toAddress) {
		return nil, ErrBadAddress
	}
	if amount < s.minWithdrawal {
		return nil, ErrBelowMinimum
	}

	balance, err := s.balances.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance.Available() < amount {
		return nil, ErrInsufficient
	}
	if amount-s.fee <= 0 {
		return nil, ErrFeeExceeds
	}

	// повторная проверка остатка внутри Lock закрывает гонку
	// двух одновременных заявок
	if err := s.balances.Lock(ctx, userID, amount); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficient
		}
		return nil, err
	}

	w := &domain.Withdrawal{
		UserID:    userID,
		ToAddress: toAddress,
		Amount:    amount,
		Fee:       s.fee,
		NetAmount: amount - s.fee,
	}
	if err := s.withdrawals.Create(ctx, w); err != nil {
		// заявка не записалась, возвращаем резерв
		if refundErr := s.balances.Refund(ctx, userID, amount); refundErr != nil {
			logger.Error("withdrawal refund after create failure", "user_id", userID, "error", refundErr)
		}
		return nil, err
	}

	s.publish(domain.PaymentEvent{
		Type:      domain.EventWithdrawalRequested,
		UserID:    userID,
		Amount:    amount,
		Address:   toAddress,
		CreatedAt: time.Now(),
	})
	logger.Info("withdrawal requested", "user_id", userID, "amount", amount, "to", toAddress)
	return w, nil
}

// История операций по депозитному балансу
type Transactions struct {
	Deposits    []domain.Deposit    `json:"deposits"`
	Withdrawals []domain.Withdrawal `json:"withdrawals"`
}

// Transactions возвращает депозиты и выводы пользователя
func (s *PaymentService) Transactions(ctx context.Context, userID string) (*Transactions, error) {
	deposits, err := s.deposits.GetByUserID(ctx, userID, 100)
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.withdrawals.GetByUserID(ctx, userID, 100)
	if err != nil {
		return nil, err
	}
	return &Transactions{Deposits: deposits, Withdrawals: withdrawals}, nil
}

// publish отправляет событие без блокировки; переполненный канал
// означает потерю уведомления, не денег
func (s *PaymentService) publish(ev domain.PaymentEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
		logger.Warn("payment event dropped, channel full", "type", ev.Type, "user_id", ev.UserID)
	}
}
