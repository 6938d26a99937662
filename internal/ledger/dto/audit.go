package dto

import "time"

// AuditReport counts the ledger rows breaking a bookkeeping rule.
type AuditReport struct {
	NonPositiveLots  int64     `json:"non_positive_lots"`
	NegativeBalances int64     `json:"negative_balances"`
	OrphanLots       int64     `json:"orphan_lots"`
	CheckedAt        time.Time `json:"checked_at"`
}

// Clean reports whether no violation was found.
func (r AuditReport) Clean() bool {
	return r.NonPositiveLots == 0 && r.NegativeBalances == 0 && r.OrphanLots == 0
}
