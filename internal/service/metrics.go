package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricDepositsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "merac_deposits_confirmed_total",
		Help: "Confirmed on-chain deposits detected by the reconciler.",
	})

	metricDepositsCreditedUSDT = promauto.NewCounter(prometheus.CounterOpts{
		Name: "merac_deposits_credited_usdt_total",
		Help: "Total USDT credited to user balances from deposits.",
	})

	metricWithdrawalsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "merac_withdrawals_processed_total",
		Help: "Processed withdrawal requests by final status.",
	}, []string{"status"})

	metricReconcileErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "merac_reconcile_errors_total",
		Help: "Errors in reconciler loops by stage.",
	}, []string{"stage"})
)
