package kernels

import (
	"fmt"

	"indicatorworker/internal/domain"
	"indicatorworker/pkg/workerrors"
)

// requireLength fails with InsufficientData when the series is shorter
// than warmup+1 — the minimum length needed to emit at least one point,
// per spec.md §8 boundary behaviour 10 (warm-up-inclusive convention: a
// series of length exactly warmup+1 emits its one valid point at index
// warmup).
func requireLength(n, warmup int) error {
	if n < warmup+1 {
		return workerrors.New(workerrors.InsufficientData, "", nil).
			WithMessage(fmt.Sprintf("series length %d below required %d", n, warmup+1))
	}
	return nil
}

// scalarPoints converts a talib full-length, zero-filled-warm-up output
// slice into Points starting at the given warm-up index.
func scalarPoints(out []float64, warm int) []Point {
	if warm < 0 {
		warm = 0
	}
	if warm >= len(out) {
		return nil
	}
	pts := make([]Point, 0, len(out)-warm)
	for i := warm; i < len(out); i++ {
		pts = append(pts, Point{Index: i, Value: domain.ScalarValue(out[i])})
	}
	return pts
}
