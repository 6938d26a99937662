package service

import (
	"sort"

	"golang-stock-ledger/internal/entity"
)

// lotPlan describes how a sell consumes lots: lots to delete entirely, lots
// left with a reduced quantity, and any quantity no lot could cover.
type lotPlan struct {
	Deleted   []uint
	Reduced   []entity.Holding
	Remaining int64
}

// selectLots consumes quantity from lots, highest price first. Lots of equal
// price keep their input order. The input slice is not modified.
func selectLots(lots []entity.Holding, quantity int64) lotPlan {
	ordered := make([]entity.Holding, len(lots))
	copy(ordered, lots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Price.GreaterThan(ordered[j].Price)
	})

	var plan lotPlan
	remaining := quantity
	for _, lot := range ordered {
		if remaining <= 0 {
			break
		}
		if lot.Quantity <= remaining {
			plan.Deleted = append(plan.Deleted, lot.ID)
			remaining -= lot.Quantity
			continue
		}
		lot.Quantity -= remaining
		plan.Reduced = append(plan.Reduced, lot)
		remaining = 0
	}
	plan.Remaining = remaining
	return plan
}

func sumLots(lots []entity.Holding) int64 {
	var total int64
	for _, lot := range lots {
		total += lot.Quantity
	}
	return total
}
