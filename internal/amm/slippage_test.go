package amm

import (
	"math/big"
	"testing"
)

func TestMinOutFloor(t *testing.T) {
	cases := []struct {
		amount int64
		bps    uint64
		want   int64
	}{
		{10_000, 0, 10_000},
		{10_000, 50, 9950},
		{10_000, 10_000, 0},
		{999, 100, 989},   // floor(999*9900/10000)
		{1, 1, 0},         // floor(1*9999/10000)
		{0, 500, 0},
	}

	for _, c := range cases {
		got, err := MinOut(big.NewInt(c.amount), c.bps)
		if err != nil {
			t.Fatalf("minOut(%d, %d): %v", c.amount, c.bps, err)
		}
		if got.Int64() != c.want {
			t.Fatalf("minOut(%d, %d) = %s, want %d", c.amount, c.bps, got, c.want)
		}
	}
}

func TestMinOutRejectsExcessTolerance(t *testing.T) {
	if _, err := MinOut(big.NewInt(100), 10_001); err != ErrInvalidSlippage {
		t.Fatalf("expected ErrInvalidSlippage, got %v", err)
	}
}
