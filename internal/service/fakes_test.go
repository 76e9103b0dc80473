package service

import (
	"context"
	"fmt"
	"sync"

	"merac_backend/internal/domain"
	"merac_backend/internal/repository"
	"merac_backend/internal/tron"
)

// fakeLedger - леджер в памяти для тестов без postgres
type fakeLedger struct {
	mu          sync.Mutex
	addresses   []domain.DepositAddress
	deposits    []domain.Deposit
	withdrawals []domain.Withdrawal
	balances    map[string]*domain.Balance
	nextID      int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]*domain.Balance)}
}

func (f *fakeLedger) GetByUserID(ctx context.Context, userID string) (*domain.DepositAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.addresses {
		if a.UserID == userID {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) Save(ctx context.Context, userID, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses = append(f.addresses, domain.DepositAddress{UserID: userID, Address: address})
	return nil
}

func (f *fakeLedger) GetAll(ctx context.Context) ([]domain.DepositAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.DepositAddress, len(f.addresses))
	copy(out, f.addresses)
	return out, nil
}

func (f *fakeLedger) Create(ctx context.Context, d *domain.Deposit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.deposits {
		if existing.TxID == d.TxID {
			return nil
		}
	}
	f.nextID++
	d.ID = f.nextID
	f.deposits = append(f.deposits, *d)
	return nil
}

func (f *fakeLedger) ConfirmedSum(ctx context.Context, userID string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	for _, d := range f.deposits {
		if d.UserID == userID && d.Status == domain.DepositStatusConfirmed {
			sum += d.Amount
		}
	}
	return sum, nil
}

func (f *fakeLedger) TxIDExists(ctx context.Context, txid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.deposits {
		if d.TxID == txid {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) depositsByUser(userID string) []domain.Deposit {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Deposit
	for _, d := range f.deposits {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out
}

// выводы

func (f *fakeLedger) CreateWithdrawal(ctx context.Context, w *domain.Withdrawal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	w.ID = f.nextID
	w.Status = domain.WithdrawalStatusPending
	f.withdrawals = append(f.withdrawals, *w)
	return nil
}

func (f *fakeLedger) GetPending(ctx context.Context, limit int) ([]domain.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Withdrawal
	for _, w := range f.withdrawals {
		if w.Status == domain.WithdrawalStatusPending {
			out = append(out, w)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeLedger) MarkCompleted(ctx context.Context, id int64, txid string) error {
	return f.setStatus(id, domain.WithdrawalStatusCompleted, txid)
}

func (f *fakeLedger) MarkFailed(ctx context.Context, id int64) error {
	return f.setStatus(id, domain.WithdrawalStatusFailed, "")
}

func (f *fakeLedger) setStatus(id int64, status domain.WithdrawalStatus, txid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.withdrawals {
		if f.withdrawals[i].ID == id {
			f.withdrawals[i].Status = status
			f.withdrawals[i].TxID = txid
			return nil
		}
	}
	return fmt.Errorf("withdrawal %d not found", id)
}

func (f *fakeLedger) withdrawalsByUser(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Withdrawal
	for _, w := range f.withdrawals {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

// балансы

func (f *fakeLedger) Get(ctx context.Context, userID string) (*domain.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.balances[userID]; ok {
		out := *b
		return &out, nil
	}
	return &domain.Balance{UserID: userID}, nil
}

func (f *fakeLedger) Credit(ctx context.Context, userID string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.balance(userID)
	b.Balance += amount
	return nil
}

func (f *fakeLedger) Lock(ctx context.Context, userID string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.balance(userID)
	if b.Balance-b.LockedBalance < amount {
		return repository.ErrInsufficientBalance
	}
	b.Balance -= amount
	b.LockedBalance += amount
	return nil
}

func (f *fakeLedger) ReleaseLocked(ctx context.Context, userID string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balance(userID).LockedBalance -= amount
	return nil
}

func (f *fakeLedger) Refund(ctx context.Context, userID string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.balance(userID)
	b.Balance += amount
	b.LockedBalance -= amount
	return nil
}

func (f *fakeLedger) balance(userID string) *domain.Balance {
	if f.balances[userID] == nil {
		f.balances[userID] = &domain.Balance{UserID: userID}
	}
	return f.balances[userID]
}

// withdrawalStoreAdapter сводит имена методов fakeLedger к WithdrawalStore
type withdrawalStoreAdapter struct {
	f *fakeLedger
}

func (a withdrawalStoreAdapter) Create(ctx context.Context, w *domain.Withdrawal) error {
	return a.f.CreateWithdrawal(ctx, w)
}

func (a withdrawalStoreAdapter) GetPending(ctx context.Context, limit int) ([]domain.Withdrawal, error) {
	return a.f.GetPending(ctx, limit)
}

func (a withdrawalStoreAdapter) MarkCompleted(ctx context.Context, id int64, txid string) error {
	return a.f.MarkCompleted(ctx, id, txid)
}

func (a withdrawalStoreAdapter) MarkFailed(ctx context.Context, id int64) error {
	return a.f.MarkFailed(ctx, id)
}

func (a withdrawalStoreAdapter) GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error) {
	return a.f.withdrawalsByUser(ctx, userID, limit)
}

// depositStoreAdapter отдает депозиты fakeLedger под интерфейс DepositStore
type depositStoreAdapter struct {
	f *fakeLedger
}

func (a depositStoreAdapter) Create(ctx context.Context, d *domain.Deposit) error {
	return a.f.Create(ctx, d)
}

func (a depositStoreAdapter) ConfirmedSum(ctx context.Context, userID string) (float64, error) {
	return a.f.ConfirmedSum(ctx, userID)
}

func (a depositStoreAdapter) TxIDExists(ctx context.Context, txid string) (bool, error) {
	return a.f.TxIDExists(ctx, txid)
}

func (a depositStoreAdapter) GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Deposit, error) {
	return a.f.depositsByUser(userID), nil
}

// fakeOracle имитирует сеть TRON
type fakeOracle struct {
	mu       sync.Mutex
	balances map[string]float64
	sendErr  error
	failAddr string // переводы на этот адрес падают
	sent     []string
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{balances: make(map[string]float64)}
}

func (o *fakeOracle) USDTBalance(ctx context.Context, address string) (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.balances[address], nil
}

func (o *fakeOracle) SendUSDT(ctx context.Context, toAddress string, amount float64) (*tron.TransferResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sendErr != nil {
		return nil, o.sendErr
	}
	if o.failAddr != "" && toAddress == o.failAddr {
		return nil, fmt.Errorf("transfer to %s rejected", toAddress)
	}
	o.sent = append(o.sent, toAddress)
	return &tron.TransferResult{
		TxID:      fmt.Sprintf("tx_%d", len(o.sent)),
		Amount:    amount,
		NetAmount: amount,
	}, nil
}
