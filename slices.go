package mirror

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset is a listed security a slice can target.
type Asset struct {
	ID     string
	Symbol string
	Name   string
}

// DeletedReason tells why a slice left the fund copy.
type DeletedReason string

const (
	RemovedFromFund DeletedReason = "removed-from-fund"
	NonCompliant    DeletedReason = "non-compliant"
)

// Slice is a portfolio's target allocation to one asset.
//
// Slices are never removed: a slice dropping out of the fund is marked deleted, with a zero
// percent, so that the positions still held for it remain addressable.
type Slice struct {
	ID            string
	PortfolioID   string
	Asset         Asset
	Percent       Percent
	Deleted       bool
	DeletedAt     time.Time
	DeletedReason DeletedReason
}

// HoldingUpdate is the weight of an asset in the latest composition of the reference fund.
type HoldingUpdate struct {
	Asset   Asset
	Percent Percent
}

// SliceChanges is the outcome of MergeUpdatedHoldings.
type SliceChanges struct {
	Slices   []Slice // all slices, existing ones first in their original order
	Added    []Slice // new or restored slices
	Modified []Slice // slices whose percent moved by at least ModifiedThreshold
	Removed  []Slice // slices newly deleted that had a non zero percent
}

// ModifiedThreshold is the smallest percent move reported as a modification.
var ModifiedThreshold = P(0.1)

// newSliceID returns a fresh slice identifier.
func newSliceID() string { return "slc_" + strings.ReplaceAll(uuid.NewString(), "-", "") }

// MergeUpdatedHoldings applies the latest fund composition to a portfolio's slices.
//
// Update weights are rescaled to sum to 100. Existing slices take their new weight, and are
// restored if they were deleted. Slices missing from the updates are deleted, with the reason
// NonCompliant when their asset is listed in nonCompliant (asset IDs). Updates for unknown
// assets with a positive weight become new slices.
func MergeUpdatedHoldings(portfolioID string, existing []Slice, updates []HoldingUpdate, nonCompliant []string, now time.Time) SliceChanges {
	total := decimal.Zero
	byAsset := make(map[string]HoldingUpdate, len(updates))
	for _, u := range updates {
		total = total.Add(u.Percent.value)
		byAsset[u.Asset.ID] = u
	}
	scale := func(p Percent) Percent {
		if total.IsZero() {
			return Percent{}
		}
		return Percent{value: p.value.Mul(hundred).Div(total)}
	}
	excluded := make(map[string]bool, len(nonCompliant))
	for _, id := range nonCompliant {
		excluded[id] = true
	}

	var changes SliceChanges
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[s.Asset.ID] = true
		u, found := byAsset[s.Asset.ID]
		if found {
			updated := s
			updated.Percent = scale(u.Percent)
			updated.Deleted, updated.DeletedAt, updated.DeletedReason = false, time.Time{}, ""
			switch {
			case s.Deleted:
				changes.Added = append(changes.Added, updated)
			case !s.Percent.Sub(updated.Percent).Abs().value.LessThan(ModifiedThreshold.value):
				changes.Modified = append(changes.Modified, updated)
			}
			changes.Slices = append(changes.Slices, updated)
			continue
		}

		if s.Deleted {
			// already out of the fund
			changes.Slices = append(changes.Slices, s)
			continue
		}
		removed := s
		removed.Percent = Percent{}
		removed.Deleted, removed.DeletedAt, removed.DeletedReason = true, now, RemovedFromFund
		if excluded[s.Asset.ID] {
			removed.DeletedReason = NonCompliant
		}
		if !s.Percent.IsZero() {
			changes.Removed = append(changes.Removed, removed)
		}
		changes.Slices = append(changes.Slices, removed)
	}

	for _, u := range updates {
		if known[u.Asset.ID] || !u.Percent.value.IsPositive() {
			continue
		}
		known[u.Asset.ID] = true
		s := Slice{ID: newSliceID(), PortfolioID: portfolioID, Asset: u.Asset, Percent: scale(u.Percent)}
		changes.Added = append(changes.Added, s)
		changes.Slices = append(changes.Slices, s)
	}
	return changes
}

// SlicesForPositions returns 0% slices for positions held outside of the fund, typically
// received through a corporate action. assets lists the known assets by symbol.
func SlicesForPositions(portfolioID string, positions []Position, assets map[string]Asset) ([]Slice, error) {
	var missing []string
	slices := make([]Slice, 0, len(positions))
	for _, p := range positions {
		a, ok := assets[p.Symbol]
		if !ok {
			missing = append(missing, p.Symbol)
			continue
		}
		slices = append(slices, Slice{ID: newSliceID(), PortfolioID: portfolioID, Asset: a, Percent: P(0)})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no listed asset for %s: %w", strings.Join(missing, ", "), ErrUnknownAsset)
	}
	return slices, nil
}
