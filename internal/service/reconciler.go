package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"merac_backend/internal/domain"
	"merac_backend/internal/logger"
	"merac_backend/internal/tron"
)

// Oracle - источник правды о состоянии сети TRON
type Oracle interface {
	USDTBalance(ctx context.Context, address string) (float64, error)
	SendUSDT(ctx context.Context, toAddress string, amount float64) (*tron.TransferResult, error)
}

// Настройки циклов сверки
type ReconcilerConfig struct {
	DepositInterval  time.Duration
	WithdrawInterval time.Duration
	BatchSize        int
	BatchDelay       time.Duration
	CallTimeout      time.Duration
}

// Reconciler сверяет балансы с сетью и разгребает очередь выводов.
// Депозиты: раз в интервал сравнивает ончейн-баланс каждого адреса
// с суммой учтенных депозитов и дозачисляет разницу.
// Выводы: пачками обрабатывает ожидающие заявки; повторный тик
// при незаконченной обработке пропускается.
type Reconciler struct {
	addresses   AddressStore
	deposits    DepositStore
	withdrawals WithdrawalStore
	balances    BalanceStore
	oracle      Oracle
	cfg         ReconcilerConfig
	events      chan<- domain.PaymentEvent

	mu         sync.Mutex
	processing bool

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewReconciler(
	addresses AddressStore,
	deposits DepositStore,
	withdrawals WithdrawalStore,
	balances BalanceStore,
	oracle Oracle,
	cfg ReconcilerConfig,
	events chan<- domain.PaymentEvent,
) *Reconciler {
	if cfg.DepositInterval <= 0 {
		cfg.DepositInterval = tron.DepositCheckInterval
	}
	if cfg.WithdrawInterval <= 0 {
		cfg.WithdrawInterval = tron.WithdrawProcessInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = tron.WithdrawBatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = tron.WithdrawBatchDelay
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = tron.ExternalCallTimeout
	}
	return &Reconciler{
		addresses:   addresses,
		deposits:    deposits,
		withdrawals: withdrawals,
		balances:    balances,
		oracle:      oracle,
		cfg:         cfg,
		events:      events,
		stop:        make(chan struct{}),
	}
}

// Start запускает оба цикла сверки
func (r *Reconciler) Start() {
	r.wg.Add(2)
	go r.depositLoop()
	go r.withdrawLoop()
	logger.Info("reconciler started",
		"deposit_interval", r.cfg.DepositInterval,
		"withdraw_interval", r.cfg.WithdrawInterval)
}

// Stop останавливает циклы и дожидается их завершения
func (r *Reconciler) Stop() {
	close(r.stop)
	r.wg.Wait()
	logger.Info("reconciler stopped")
}

func (r *Reconciler) depositLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.DepositInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.ScanDeposits(context.Background())
		case <-r.stop:
			return
		}
	}
}

func (r *Reconciler) withdrawLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.WithdrawInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.ProcessWithdrawals(context.Background())
		case <-r.stop:
			return
		}
	}
}

// ScanDeposits сверяет ончейн-балансы всех депозитных адресов
// с учтенными депозитами. Ошибка по одному адресу не прерывает обход.
func (r *Reconciler) ScanDeposits(ctx context.Context) {
	addresses, err := r.addresses.GetAll(ctx)
	if err != nil {
		logger.Error("deposit scan: list addresses", "error", err)
		metricReconcileErrors.WithLabelValues("deposit_list").Inc()
		return
	}

	for _, addr := range addresses {
		if err := r.scanAddress(ctx, addr); err != nil {
			logger.Error("deposit scan: address skipped", "address", addr.Address, "error", err)
			metricReconcileErrors.WithLabelValues("deposit_scan").Inc()
		}
	}
}

func (r *Reconciler) scanAddress(ctx context.Context, addr domain.DepositAddress) error {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	chainBalance, err := r.oracle.USDTBalance(callCtx, addr.Address)
	cancel()
	if err != nil {
		return err
	}

	confirmed, err := r.deposits.ConfirmedSum(ctx, addr.UserID)
	if err != nil {
		return err
	}

	delta := chainBalance - confirmed
	if delta <= 0 {
		return nil
	}

	// txid детерминирован от наблюдаемого ончейн-итога: повторное
	// наблюдение того же состояния не породит второй депозит
	txid := fmt.Sprintf("dep_%s_%d", addr.Address, int64(chainBalance*1_000_000))
	exists, err := r.deposits.TxIDExists(ctx, txid)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	now := time.Now()
	deposit := &domain.Deposit{
		UserID:      addr.UserID,
		Address:     addr.Address,
		TxID:        txid,
		Amount:      delta,
		Status:      domain.DepositStatusConfirmed,
		ConfirmedAt: &now,
	}
	if err := r.deposits.Create(ctx, deposit); err != nil {
		return err
	}
	if err := r.balances.Credit(ctx, addr.UserID, delta); err != nil {
		return err
	}

	metricDepositsConfirmed.Inc()
	metricDepositsCreditedUSDT.Add(delta)
	r.publish(domain.PaymentEvent{
		Type:      domain.EventDepositConfirmed,
		UserID:    addr.UserID,
		Amount:    delta,
		TxID:      txid,
		Address:   addr.Address,
		CreatedAt: now,
	})
	logger.Info("deposit credited", "user_id", addr.UserID, "amount", delta, "txid", txid)
	return nil
}

// ProcessWithdrawals разбирает очередь ожидающих выводов пачками.
// Если прошлый тик еще работает, новый просто выходит.
func (r *Reconciler) ProcessWithdrawals(ctx context.Context) {
	r.mu.Lock()
	if r.processing {
		r.mu.Unlock()
		logger.Warn("withdrawal processing still running, tick skipped")
		return
	}
	r.processing = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.processing = false
		r.mu.Unlock()
	}()

	for {
		batch, err := r.withdrawals.GetPending(ctx, r.cfg.BatchSize)
		if err != nil {
			logger.Error("withdrawal processing: get pending", "error", err)
			metricReconcileErrors.WithLabelValues("withdraw_list").Inc()
			return
		}
		if len(batch) == 0 {
			return
		}

		for _, w := range batch {
			r.processWithdrawal(ctx, w)
		}

		if len(batch) < r.cfg.BatchSize {
			return
		}

		// пауза между пачками, чтобы не упереться в лимиты API
		select {
		case <-time.After(r.cfg.BatchDelay):
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reconciler) processWithdrawal(ctx context.Context, w domain.Withdrawal) {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	result, err := r.oracle.SendUSDT(callCtx, w.ToAddress, w.NetAmount)
	cancel()

	if err != nil {
		logger.Error("withdrawal transfer failed", "id", w.ID, "user_id", w.UserID, "error", err)
		if merr := r.withdrawals.MarkFailed(ctx, w.ID); merr != nil {
			logger.Error("withdrawal mark failed", "id", w.ID, "error", merr)
		}
		if rerr := r.balances.Refund(ctx, w.UserID, w.Amount); rerr != nil {
			logger.Error("withdrawal refund", "id", w.ID, "error", rerr)
		}
		metricWithdrawalsProcessed.WithLabelValues("failed").Inc()
		r.publish(domain.PaymentEvent{
			Type:      domain.EventWithdrawalFailed,
			UserID:    w.UserID,
			Amount:    w.Amount,
			Address:   w.ToAddress,
			Error:     err.Error(),
			CreatedAt: time.Now(),
		})
		return
	}

	if err := r.withdrawals.MarkCompleted(ctx, w.ID, result.TxID); err != nil {
		logger.Error("withdrawal mark completed", "id", w.ID, "error", err)
		return
	}
	if err := r.balances.ReleaseLocked(ctx, w.UserID, w.Amount); err != nil {
		logger.Error("withdrawal release locked", "id", w.ID, "error", err)
	}

	metricWithdrawalsProcessed.WithLabelValues("completed").Inc()
	r.publish(domain.PaymentEvent{
		Type:      domain.EventWithdrawalCompleted,
		UserID:    w.UserID,
		Amount:    w.Amount,
		TxID:      result.TxID,
		Address:   w.ToAddress,
		CreatedAt: time.Now(),
	})
	logger.Info("withdrawal completed", "id", w.ID, "user_id", w.UserID, "txid", result.TxID)
}

func (r *Reconciler) publish(ev domain.PaymentEvent) {
	if r.events == nil {
		return
	}
	select {
	case r.events <- ev:
	default:
		logger.Warn("payment event dropped, channel full", "type", ev.Type, "user_id", ev.UserID)
	}
}
