// Package kernels implements the indicator kernels: thin adapters over
// github.com/markcheno/go-talib, the embedded reference library that
// guarantees numeric compatibility with TA-Lib (spec.md §4.1). Kernels are
// registered under a tagged dispatch keyed on canonical indicator name
// rather than a class hierarchy (spec.md §9).
package kernels

import (
	"indicatorworker/internal/domain"
	"indicatorworker/pkg/workerrors"
)

// InputShape declares which OHLCV columns a kernel reads.
type InputShape int

const (
	CloseOnly InputShape = iota
	HighLowClose
	FullOHLCV
)

// OutputShape declares the shape of a kernel's emitted value.
type OutputShape int

const (
	Scalar OutputShape = iota
	Record
	Pattern
)

// Point is one (index, value) emission from a kernel.
type Point struct {
	Index int
	Value domain.IndicatorValue
}

// Kernel computes one indicator over a CandleSeries and a resolved
// parameter set. Implementations must not emit a point for an index whose
// result is undefined (warm-up region) and must emit one point per defined
// index thereafter — the indices returned must be strictly ascending.
type Kernel interface {
	Name() string
	InputShape() InputShape
	OutputShape() OutputShape
	Defaults() map[string]any
	Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error)
}

// Registry maps a canonical indicator name to its Kernel.
type Registry struct {
	kernels map[string]Kernel
}

// NewRegistry builds the registry with every kernel named in spec.md §4.1.
func NewRegistry() *Registry {
	r := &Registry{kernels: make(map[string]Kernel)}
	for _, k := range allKernels() {
		r.kernels[k.Name()] = k
	}
	return r
}

// Lookup returns the kernel for a canonical name, or ok=false if unknown.
func (r *Registry) Lookup(name string) (Kernel, bool) {
	k, ok := r.kernels[name]
	return k, ok
}

// Compute resolves params against the kernel's defaults and runs the
// kernel, which validates them. Kernel errors are returned unchanged:
// kernels already report them as workerrors values (InsufficientData,
// InvalidParameter) per spec.md §4.1 / §7, and an unknown name is reported
// here as KernelInternal.
func (r *Registry) Compute(name string, series *domain.CandleSeries, rawParams map[string]any) ([]Point, error) {
	k, ok := r.Lookup(name)
	if !ok {
		return nil, workerrors.New(workerrors.KernelInternal, "", nil).WithMessage("unknown kernel " + name)
	}
	params, err := ResolveParams(name, k.Defaults(), rawParams)
	if err != nil {
		return nil, err
	}
	pts, err := k.Compute(series, params)
	if err != nil {
		return nil, err
	}
	return pts, nil
}
