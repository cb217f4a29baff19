// Single-level discrete wavelet transform on float64 signals and planes
package wavelet

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Filter is a wavelet filter bank: decomposition and reconstruction pairs
type Filter struct {
	Name  string
	DecLo []float64
	DecHi []float64
	RecLo []float64
	RecHi []float64
}

const (
	b13a = 0.08838834764831845 // 1/(8*sqrt(2))
	b13b = 0.7071067811865476  // 1/sqrt(2)
)

// Bior13 is the biorthogonal 1.3 filter bank
var Bior13 = Filter{
	Name:  "bior1.3",
	DecLo: []float64{-b13a, b13a, b13b, b13b, b13a, -b13a},
	DecHi: []float64{0, 0, -b13b, b13b, 0, 0},
	RecLo: []float64{0, 0, b13b, b13b, 0, 0},
	RecHi: []float64{-b13a, -b13a, b13b, -b13b, b13a, b13a},
}

var filters = map[string]Filter{
	Bior13.Name: Bior13,
}

// Lookup returns a registered filter bank by name
func Lookup(name string) (Filter, error) {
	f, ok := filters[name]
	if !ok {
		return Filter{}, fmt.Errorf("unknown wavelet: %s", name)
	}
	return f, nil
}

// Names returns the registered filter names in sorted order
func Names() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the filter length
func (f Filter) Len() int {
	return len(f.DecLo)
}

// Padding returns the largest number of samples a DWT/IDWT round trip can add
// to one axis. Odd lengths grow, even lengths are reconstructed exactly.
func (f Filter) Padding() int {
	return ReconLen(CoeffLen(1, f.Len()), f.Len()) - 1
}

// CoeffLen returns the number of coefficients per band for a signal of length n
func CoeffLen(n, filterLen int) int {
	return (n + filterLen - 1) / 2
}

// ReconLen returns the reconstructed signal length for bands of length n
func ReconLen(n, filterLen int) int {
	return 2*n - filterLen + 2
}

// symIndex maps i into [0, n) with half-sample symmetric extension
func symIndex(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -1 - i
		}
		if i >= n {
			i = 2*n - 1 - i
		}
	}
	return i
}

func reversed(h []float64) []float64 {
	r := make([]float64, len(h))
	for i, v := range h {
		r[len(h)-1-i] = v
	}
	return r
}

// DWT decomposes x into approximation and detail coefficients
func DWT(x []float64, f Filter) (approx, detail []float64) {
	n := len(x)
	if n == 0 {
		return nil, nil
	}

	flen := f.Len()
	size := CoeffLen(n, flen)
	approx = make([]float64, size)
	detail = make([]float64, size)

	lo := reversed(f.DecLo)
	hi := reversed(f.DecHi)
	window := make([]float64, flen)

	for k := 0; k < size; k++ {
		start := 2*k + 2 - flen
		for m := range window {
			window[m] = x[symIndex(start+m, n)]
		}
		approx[k] = floats.Dot(lo, window)
		detail[k] = floats.Dot(hi, window)
	}

	return approx, detail
}

// IDWT reconstructs a signal from approximation and detail coefficients
func IDWT(approx, detail []float64, f Filter) ([]float64, error) {
	if len(approx) != len(detail) {
		return nil, fmt.Errorf("coefficient length mismatch: %d != %d", len(approx), len(detail))
	}

	n := len(approx)
	flen := f.Len()
	size := ReconLen(n, flen)
	if size <= 0 {
		return nil, fmt.Errorf("too few coefficients for %s: %d", f.Name, n)
	}

	out := make([]float64, size)
	for m := range out {
		t := m + flen - 2
		last := t / 2
		if last > n-1 {
			last = n - 1
		}

		var v float64
		for k := m / 2; k <= last; k++ {
			j := t - 2*k
			v += approx[k]*f.RecLo[j] + detail[k]*f.RecHi[j]
		}
		out[m] = v
	}

	return out, nil
}
