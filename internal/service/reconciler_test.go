package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"merac_backend/internal/domain"
)

func newTestReconciler(f *fakeLedger, o *fakeOracle, events chan domain.PaymentEvent) *Reconciler {
	return NewReconciler(
		f, depositStoreAdapter{f}, withdrawalStoreAdapter{f}, f, o,
		ReconcilerConfig{
			DepositInterval:  time.Hour,
			WithdrawInterval: time.Hour,
			BatchSize:        10,
			BatchDelay:       time.Millisecond,
			CallTimeout:      time.Second,
		},
		events,
	)
}

func TestScanDepositsCreditsDelta(t *testing.T) {
	f := newFakeLedger()
	o := newFakeOracle()
	events := make(chan domain.PaymentEvent, 8)
	r := newTestReconciler(f, o, events)
	ctx := context.Background()

	f.Save(ctx, "u1", testAddress)
	o.balances[testAddress] = 150

	// уже учтено 100, ончейн 150: дозачислить ровно 50
	f.Create(ctx, &domain.Deposit{
		UserID: "u1", Address: testAddress, TxID: "seed",
		Amount: 100, Status: domain.DepositStatusConfirmed,
	})

	r.ScanDeposits(ctx)

	b, _ := f.Get(ctx, "u1")
	if b.Balance != 50 {
		t.Fatalf("credited = %v, want 50", b.Balance)
	}
	sum, _ := f.ConfirmedSum(ctx, "u1")
	if sum != 150 {
		t.Fatalf("confirmed sum = %v, want 150", sum)
	}

	ev := <-events
	if ev.Type != domain.EventDepositConfirmed || ev.Amount != 50 || ev.UserID != "u1" {
		t.Errorf("event wrong: %+v", ev)
	}

	// повторный скан того же состояния ничего не дозачисляет
	r.ScanDeposits(ctx)
	b, _ = f.Get(ctx, "u1")
	if b.Balance != 50 {
		t.Fatalf("rescan must be idempotent, balance = %v", b.Balance)
	}
}

func TestScanDepositsIgnoresShrunkBalance(t *testing.T) {
	f := newFakeLedger()
	o := newFakeOracle()
	r := newTestReconciler(f, o, nil)
	ctx := context.Background()

	f.Save(ctx, "u1", testAddress)
	o.balances[testAddress] = 70
	f.Create(ctx, &domain.Deposit{
		UserID: "u1", Address: testAddress, TxID: "seed",
		Amount: 100, Status: domain.DepositStatusConfirmed,
	})

	// ончейн меньше учтенного (комиссии, вывод компании): дельта <= 0, без изменений
	r.ScanDeposits(ctx)

	b, _ := f.Get(ctx, "u1")
	if b.Balance != 0 {
		t.Fatalf("negative delta must not credit, balance = %v", b.Balance)
	}
}

func TestProcessWithdrawalsSuccess(t *testing.T) {
	f := newFakeLedger()
	o := newFakeOracle()
	events := make(chan domain.PaymentEvent, 8)
	r := newTestReconciler(f, o, events)
	ctx := context.Background()

	// баланс 100, заявка на 30: резерв 30
	f.Credit(ctx, "u1", 100)
	f.Lock(ctx, "u1", 30)
	w := &domain.Withdrawal{UserID: "u1", ToAddress: testAddress, Amount: 30, Fee: 1, NetAmount: 29}
	f.CreateWithdrawal(ctx, w)

	r.ProcessWithdrawals(ctx)

	pending, _ := f.GetPending(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("pending left: %d", len(pending))
	}

	b, _ := f.Get(ctx, "u1")
	if b.Balance != 70 || b.LockedBalance != 0 {
		t.Fatalf("after success: balance=%v locked=%v, want 70/0", b.Balance, b.LockedBalance)
	}

	got, _ := f.withdrawalsByUser(ctx, "u1", 10)
	if got[0].Status != domain.WithdrawalStatusCompleted || got[0].TxID == "" {
		t.Fatalf("withdrawal not completed: %+v", got[0])
	}

	ev := <-events
	if ev.Type != domain.EventWithdrawalCompleted {
		t.Errorf("event type = %s", ev.Type)
	}
}

func TestProcessWithdrawalsFailureRefunds(t *testing.T) {
	f := newFakeLedger()
	o := newFakeOracle()
	o.sendErr = errors.New("network unreachable")
	events := make(chan domain.PaymentEvent, 8)
	r := newTestReconciler(f, o, events)
	ctx := context.Background()

	f.Credit(ctx, "u1", 100)
	f.Lock(ctx, "u1", 30)
	f.CreateWithdrawal(ctx, &domain.Withdrawal{UserID: "u1", ToAddress: testAddress, Amount: 30, Fee: 1, NetAmount: 29})

	r.ProcessWithdrawals(ctx)

	b, _ := f.Get(ctx, "u1")
	if b.Balance != 100 || b.LockedBalance != 0 {
		t.Fatalf("after failure: balance=%v locked=%v, want 100/0", b.Balance, b.LockedBalance)
	}

	got, _ := f.withdrawalsByUser(ctx, "u1", 10)
	if got[0].Status != domain.WithdrawalStatusFailed {
		t.Fatalf("status = %s, want failed", got[0].Status)
	}

	ev := <-events
	if ev.Type != domain.EventWithdrawalFailed || ev.Error == "" {
		t.Errorf("event wrong: %+v", ev)
	}
}

func TestProcessWithdrawalsOneFailureDoesNotStopBatch(t *testing.T) {
	f := newFakeLedger()
	o := newFakeOracle()
	r := newTestReconciler(f, o, nil)
	ctx := context.Background()

	badAddress := "TG3XXyExBkPp9nzdajDZsozEu4BkaSJozs"
	o.failAddr = badAddress

	f.Credit(ctx, "u1", 100)
	f.Lock(ctx, "u1", 20)
	f.Lock(ctx, "u1", 20)
	f.CreateWithdrawal(ctx, &domain.Withdrawal{UserID: "u1", ToAddress: badAddress, Amount: 20, Fee: 1, NetAmount: 19})
	f.CreateWithdrawal(ctx, &domain.Withdrawal{UserID: "u1", ToAddress: testAddress, Amount: 20, Fee: 1, NetAmount: 19})

	r.ProcessWithdrawals(ctx)

	pending, _ := f.GetPending(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("pending left: %d", len(pending))
	}

	got, _ := f.withdrawalsByUser(ctx, "u1", 10)
	if got[0].Status != domain.WithdrawalStatusFailed {
		t.Errorf("first withdrawal status = %s, want failed", got[0].Status)
	}
	if got[1].Status != domain.WithdrawalStatusCompleted {
		t.Errorf("second withdrawal status = %s, want completed", got[1].Status)
	}

	// упавший вернулся на баланс, успешный списан насовсем
	b, _ := f.Get(ctx, "u1")
	if b.Balance != 80 || b.LockedBalance != 0 {
		t.Fatalf("balance=%v locked=%v, want 80/0", b.Balance, b.LockedBalance)
	}
}

func TestStartStop(t *testing.T) {
	f := newFakeLedger()
	o := newFakeOracle()
	r := newTestReconciler(f, o, nil)

	r.Start()
	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not stop")
	}
}
