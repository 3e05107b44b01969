package helpers

import (
	"math"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	tests := map[float64]string{
		2000:   "₹2000",
		1250.5: "₹1250.5",
		0.25:   "₹0.25",
	}
	for in, want := range tests {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestIsPositiveAmount(t *testing.T) {
	for _, bad := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if IsPositiveAmount(bad) {
			t.Errorf("IsPositiveAmount(%v) = true", bad)
		}
	}
	if !IsPositiveAmount(500) {
		t.Error("IsPositiveAmount(500) = false")
	}
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 10)
	if offset != 20 || limit != 10 {
		t.Fatalf("got offset=%d limit=%d", offset, limit)
	}
	offset, limit = CalculateOffsetLimit(0, 1000)
	if offset != 0 || limit != DefaultPageSize {
		t.Fatalf("got offset=%d limit=%d", offset, limit)
	}
}

func TestCalculateSliceIndices(t *testing.T) {
	start, end := CalculateSliceIndices(20, 10, 25)
	if start != 20 || end != 25 {
		t.Fatalf("got %d..%d", start, end)
	}
	start, end = CalculateSliceIndices(40, 10, 25)
	if start != 25 || end != 25 {
		t.Fatalf("got %d..%d", start, end)
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(41, 2, 20)
	if info.TotalPages != 3 || info.CurrentPage != 2 || info.TotalItems != 41 {
		t.Fatalf("unexpected pagination %+v", info)
	}
	if NewPaginationInfo(0, 1, 20).TotalPages != 1 {
		t.Fatal("empty result should report one page")
	}
}
