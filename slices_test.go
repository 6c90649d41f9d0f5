package mirror

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMergeUpdatedHoldings(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	restored := slice("s3", "C", 0)
	restored.Deleted, restored.DeletedReason = true, RemovedFromFund
	existing := []Slice{
		slice("s1", "A", 50),
		slice("s2", "B", 30),
		restored,
		slice("s4", "D", 20),
		slice("s5", "E", 0),
	}
	updates := []HoldingUpdate{
		{Asset: Asset{ID: "la_A", Symbol: "A"}, Percent: P(25.02)},
		{Asset: Asset{ID: "la_C", Symbol: "C"}, Percent: P(10)},
		{Asset: Asset{ID: "la_F", Symbol: "F"}, Percent: P(15)},
		{Asset: Asset{ID: "la_G", Symbol: "G"}, Percent: P(0)},
	}
	// updates sum to 50.02, scaled by 100/50.02

	got := MergeUpdatedHoldings("p1", existing, updates, []string{"la_D"}, now)

	if len(got.Slices) != 6 {
		t.Fatalf("MergeUpdatedHoldings() = %d slices, want 6", len(got.Slices))
	}
	a := got.Slices[0]
	if a.ID != "s1" || !a.Percent.Decimal().Round(6).Equal(D("50.019992")) {
		t.Errorf("A = %v, want ~50.02%%", a.Percent)
	}
	b := got.Slices[1]
	if !b.Deleted || b.DeletedReason != RemovedFromFund || !b.Percent.IsZero() || !b.DeletedAt.Equal(now) {
		t.Errorf("B = %+v, want deleted from fund", b)
	}
	if c := got.Slices[2]; c.Deleted || c.DeletedReason != "" {
		t.Errorf("C = %+v, want restored", c)
	}
	if d := got.Slices[3]; d.DeletedReason != NonCompliant {
		t.Errorf("D reason = %q, want %q", d.DeletedReason, NonCompliant)
	}
	f := got.Slices[5]
	if f.Asset.Symbol != "F" || f.PortfolioID != "p1" || !strings.HasPrefix(f.ID, "slc_") {
		t.Errorf("F = %+v, want a new slice", f)
	}

	if ids := sliceSymbols(got.Added); ids != "C,F" {
		t.Errorf("Added = %s, want C,F", ids)
	}
	if ids := sliceSymbols(got.Modified); ids != "" {
		t.Errorf("Modified = %s, want none", ids)
	}
	if ids := sliceSymbols(got.Removed); ids != "B,D" {
		t.Errorf("Removed = %s, want B,D", ids)
	}
}

func sliceSymbols(slices []Slice) string {
	var s []string
	for _, sl := range slices {
		s = append(s, sl.Asset.Symbol)
	}
	return strings.Join(s, ",")
}

func TestMergeUpdatedHoldings_Modified(t *testing.T) {
	existing := []Slice{slice("s1", "A", 50), slice("s2", "B", 50)}
	updates := []HoldingUpdate{
		{Asset: Asset{ID: "la_A", Symbol: "A"}, Percent: P(55)},
		{Asset: Asset{ID: "la_B", Symbol: "B"}, Percent: P(45)},
	}
	got := MergeUpdatedHoldings("p1", existing, updates, nil, time.Now())
	if ids := sliceSymbols(got.Modified); ids != "A,B" {
		t.Errorf("Modified = %s, want A,B", ids)
	}
}

func TestSlicesForPositions(t *testing.T) {
	assets := map[string]Asset{"GEV": {ID: "la_GEV", Symbol: "GEV"}}
	got, err := SlicesForPositions("p1", []Position{{Symbol: "GEV"}}, assets)
	if err != nil {
		t.Fatalf("SlicesForPositions() unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Asset.ID != "la_GEV" || !got[0].Percent.IsZero() {
		t.Errorf("SlicesForPositions() = %+v", got)
	}

	_, err = SlicesForPositions("p1", []Position{{Symbol: "GEV"}, {Symbol: "XYZ"}}, assets)
	if !errors.Is(err, ErrUnknownAsset) || !strings.Contains(err.Error(), "XYZ") {
		t.Errorf("SlicesForPositions() error = %v, want %v naming XYZ", err, ErrUnknownAsset)
	}
}
