package workers

import (
	"context"
	"log"
	"time"

	"unity-gaming/services"
)

// LedgerAuditor compares every wallet balance with the sum of its ledger.
type LedgerAuditor struct {
	Ledger    *services.LedgerStore
	BatchSize int
}

func NewLedgerAuditor(ledger *services.LedgerStore) *LedgerAuditor {
	return &LedgerAuditor{Ledger: ledger, BatchSize: 200}
}

// AuditOnce reconciles all wallets and returns the ones that do not balance.
func (a *LedgerAuditor) AuditOnce(ctx context.Context) ([]services.Reconciliation, error) {
	recs, err := a.Ledger.ReconcileAll(ctx, a.BatchSize)
	if err != nil {
		return nil, err
	}
	var bad []services.Reconciliation
	for _, r := range recs {
		if !r.Balanced() {
			bad = append(bad, r)
		}
	}
	return bad, nil
}

// PollLedger runs AuditOnce every interval until ctx is cancelled.
func PollLedger(ctx context.Context, auditor *LedgerAuditor, interval time.Duration) {
	log.Printf("[AUDIT] Starting ledger audit (every %s)...", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[AUDIT] Ledger audit stopped.")
			return
		case <-ticker.C:
			started := time.Now()
			bad, err := auditor.AuditOnce(ctx)
			if err != nil {
				log.Printf("[AUDIT] ❌ Error reconciling wallets: %v", err)
				continue
			}
			if len(bad) == 0 {
				log.Printf("[AUDIT] ✅ All wallets reconcile (%s)", time.Since(started).Round(time.Millisecond))
				continue
			}
			for _, r := range bad {
				log.Printf("[AUDIT] ⚠️ Wallet %s (user %s) balance %s != ledger %s over %d entries",
					r.WalletID, r.UserID, r.Balance.StringFixed(2), r.LedgerTotal.StringFixed(2), r.Transactions)
			}
		}
	}
}
