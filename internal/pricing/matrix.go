package pricing

// Cell is one explicitly stored base price.
type Cell struct {
	WidthIndex  int
	HeightIndex int
	Price       int64
}

// Matrix holds tier-0 base prices indexed [widthIndex][heightIndex].
type Matrix [][]int64

// At returns the base price of a cell, or 0 when the cell is absent.
func (m Matrix) At(wIdx, hIdx int) int64 {
	if wIdx < 0 || wIdx >= len(m) {
		return 0
	}
	row := m[wIdx]
	if hIdx < 0 || hIdx >= len(row) {
		return 0
	}
	return row[hIdx]
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]int64(nil), row...)
	}
	return out
}

// DefaultPrice is the structural base price used for cells with no stored value.
func DefaultPrice(wIdx, hIdx int) int64 {
	return 500000 + int64(wIdx+hIdx)*50000
}

// Dimensions returns the matrix shape of the family.
func (f Family) Dimensions() (widths, heights int) {
	return f.WidthRanges().Len(), f.HeightRanges().Len()
}

// InBounds reports whether (wIdx, hIdx) addresses a cell of the family's matrix.
func (f Family) InBounds(wIdx, hIdx int) bool {
	widths, heights := f.Dimensions()
	return wIdx >= 0 && wIdx < widths && hIdx >= 0 && hIdx < heights
}

// DefaultMatrix builds the fully defaulted matrix of the family.
func DefaultMatrix(f Family) Matrix {
	return ResolveMatrix(f, nil)
}

// ResolveMatrix builds the family matrix with a two-tier lookup per cell: the
// stored price when one exists, otherwise DefaultPrice. Stored cells outside
// the family's dimensions are ignored.
func ResolveMatrix(f Family, stored []Cell) Matrix {
	widths, heights := f.Dimensions()
	m := make(Matrix, widths)
	for w := range m {
		m[w] = make([]int64, heights)
		for h := range m[w] {
			m[w][h] = DefaultPrice(w, h)
		}
	}
	for _, c := range stored {
		if !f.InBounds(c.WidthIndex, c.HeightIndex) {
			continue
		}
		m[c.WidthIndex][c.HeightIndex] = c.Price
	}
	return m
}
