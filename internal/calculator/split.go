package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/models"
)

// SplitTolerance is how far a manually entered split may drift from the
// expense amount. It is an input check, unrelated to SettleEpsilon.
var SplitTolerance = decimal.NewFromInt(1)

var (
	ErrNoParticipants = errors.New("must have at least one participant")
	ErrSplitCount     = errors.New("number of amounts does not match participants")
	ErrSplitMismatch  = errors.New("split does not add up to the expense amount")
)

const centPlaces = 2

// EqualSplit divides amount evenly between ids.
// Shares are whole cents; leftover cents go to the first ids in ascending
// order so the split always sums to amount exactly.
func EqualSplit(amount decimal.Decimal, ids []string) (models.SplitMap, error) {
	if len(ids) == 0 {
		return nil, ErrNoParticipants
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	n := decimal.NewFromInt(int64(len(sorted)))
	share := amount.Div(n).RoundDown(centPlaces)
	remainder := amount.Sub(share.Mul(n))
	cent := decimal.New(1, -centPlaces)

	split := make(models.SplitMap, len(sorted))
	for _, id := range sorted {
		s := share
		if remainder.GreaterThanOrEqual(cent) {
			s = s.Add(cent)
			remainder = remainder.Sub(cent)
		}
		split[id] = split[id].Add(s)
	}
	// Sub-cent amounts land on the first participant.
	if !remainder.IsZero() {
		split[sorted[0]] = split[sorted[0]].Add(remainder)
	}
	return split, nil
}

// CustomSplit pairs masters with manually entered amounts.
// The amounts must match masters one to one and sum to amount within
// SplitTolerance. Non-positive amounts are left out of the split.
func CustomSplit(amount decimal.Decimal, masters []string, amounts []decimal.Decimal) (models.SplitMap, error) {
	if len(masters) == 0 {
		return nil, ErrNoParticipants
	}
	if len(amounts) != len(masters) {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrSplitCount, len(masters), len(amounts))
	}
	if err := CheckSplitTotal(amount, decimal.Sum(decimal.Zero, amounts...)); err != nil {
		return nil, err
	}

	split := make(models.SplitMap, len(masters))
	for i, id := range masters {
		if amounts[i].IsPositive() {
			split[id] = amounts[i]
		}
	}
	return split, nil
}

// CheckSplitTotal verifies total is within SplitTolerance of amount.
func CheckSplitTotal(amount, total decimal.Decimal) error {
	if amount.Sub(total).Abs().GreaterThan(SplitTolerance) {
		return fmt.Errorf("%w: amount %s, split %s", ErrSplitMismatch, amount, total)
	}
	return nil
}

// ConvertForDisplay converts amount with the trip's display rate.
// ok is false when no rate is set.
func ConvertForDisplay(amount, rate decimal.Decimal) (converted decimal.Decimal, ok bool) {
	if !rate.IsPositive() {
		return decimal.Zero, false
	}
	return amount.Mul(rate), true
}
