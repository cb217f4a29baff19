package wavelet

import "fmt"

// Plane is a row-major single-channel float64 image
type Plane struct {
	Rows int
	Cols int
	Data []float64
}

// NewPlane allocates a zeroed plane
func NewPlane(rows, cols int) Plane {
	return Plane{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func (p Plane) At(r, c int) float64 {
	return p.Data[r*p.Cols+c]
}

func (p Plane) Set(r, c int, v float64) {
	p.Data[r*p.Cols+c] = v
}

// Coeffs2 holds the four sub-bands of a single-level 2D decomposition.
// H is detail along rows with approximation along columns, V the reverse.
type Coeffs2 struct {
	A Plane
	H Plane
	V Plane
	D Plane
}

// DWT2 decomposes a plane along rows (axis 0) and then columns (axis 1)
func DWT2(p Plane, f Filter) (Coeffs2, error) {
	if p.Rows <= 0 || p.Cols <= 0 || len(p.Data) != p.Rows*p.Cols {
		return Coeffs2{}, fmt.Errorf("invalid plane: %dx%d with %d samples", p.Rows, p.Cols, len(p.Data))
	}

	lo, hi := dwtColumns(p, f)
	a, v := dwtRows(lo, f)
	h, d := dwtRows(hi, f)

	return Coeffs2{A: a, H: h, V: v, D: d}, nil
}

// IDWT2 reconstructs a plane from its four sub-bands
func IDWT2(c Coeffs2, f Filter) (Plane, error) {
	if c.A.Rows != c.D.Rows || c.A.Cols != c.D.Cols ||
		c.H.Rows != c.A.Rows || c.H.Cols != c.A.Cols ||
		c.V.Rows != c.A.Rows || c.V.Cols != c.A.Cols {
		return Plane{}, fmt.Errorf("sub-band shapes differ")
	}

	lo, err := idwtRows(c.A, c.V, f)
	if err != nil {
		return Plane{}, err
	}
	hi, err := idwtRows(c.H, c.D, f)
	if err != nil {
		return Plane{}, err
	}

	return idwtColumns(lo, hi, f)
}

// dwtRows transforms every row (along axis 1)
func dwtRows(p Plane, f Filter) (lo, hi Plane) {
	cols := CoeffLen(p.Cols, f.Len())
	lo = NewPlane(p.Rows, cols)
	hi = NewPlane(p.Rows, cols)

	for r := 0; r < p.Rows; r++ {
		a, d := DWT(p.Data[r*p.Cols:(r+1)*p.Cols], f)
		copy(lo.Data[r*cols:], a)
		copy(hi.Data[r*cols:], d)
	}
	return lo, hi
}

// dwtColumns transforms every column (along axis 0)
func dwtColumns(p Plane, f Filter) (lo, hi Plane) {
	rows := CoeffLen(p.Rows, f.Len())
	lo = NewPlane(rows, p.Cols)
	hi = NewPlane(rows, p.Cols)

	column := make([]float64, p.Rows)
	for c := 0; c < p.Cols; c++ {
		for r := range column {
			column[r] = p.At(r, c)
		}
		a, d := DWT(column, f)
		for r := 0; r < rows; r++ {
			lo.Set(r, c, a[r])
			hi.Set(r, c, d[r])
		}
	}
	return lo, hi
}

func idwtRows(lo, hi Plane, f Filter) (Plane, error) {
	cols := ReconLen(lo.Cols, f.Len())
	if cols <= 0 {
		return Plane{}, fmt.Errorf("too few columns to reconstruct: %d", lo.Cols)
	}
	out := NewPlane(lo.Rows, cols)

	for r := 0; r < lo.Rows; r++ {
		row, err := IDWT(lo.Data[r*lo.Cols:(r+1)*lo.Cols], hi.Data[r*hi.Cols:(r+1)*hi.Cols], f)
		if err != nil {
			return Plane{}, err
		}
		copy(out.Data[r*cols:], row)
	}
	return out, nil
}

func idwtColumns(lo, hi Plane, f Filter) (Plane, error) {
	rows := ReconLen(lo.Rows, f.Len())
	if rows <= 0 {
		return Plane{}, fmt.Errorf("too few rows to reconstruct: %d", lo.Rows)
	}
	out := NewPlane(rows, lo.Cols)

	a := make([]float64, lo.Rows)
	d := make([]float64, hi.Rows)
	for c := 0; c < lo.Cols; c++ {
		for r := range a {
			a[r] = lo.At(r, c)
			d[r] = hi.At(r, c)
		}
		column, err := IDWT(a, d, f)
		if err != nil {
			return Plane{}, err
		}
		for r, v := range column {
			out.Set(r, c, v)
		}
	}
	return out, nil
}
