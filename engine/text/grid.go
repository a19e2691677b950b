package text

import (
	"math"

	"github.com/pkg/errors"
)

// Layout selects how glyph cells are arranged in the atlas.
type Layout int

const (
	// LayoutSquare uses a floor(sqrt(N)) square grid. Glyphs past the
	// last full square are left out of the atlas.
	LayoutSquare Layout = iota
	// LayoutCover uses ceil(sqrt(N)) columns and as many rows as needed,
	// so every glyph gets a cell.
	LayoutCover
)

func (l Layout) String() string {
	switch l {
	case LayoutSquare:
		return "square"
	case LayoutCover:
		return "cover"
	}
	return "unknown"
}

// ParseLayout accepts "square" (or "") and "cover".
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "square":
		return LayoutSquare, nil
	case "cover":
		return LayoutCover, nil
	}
	return LayoutSquare, errors.Errorf("unknown atlas layout %q", s)
}

// grid is a uniform cell layout.
type grid struct {
	cols, rows   int
	cellW, cellH int
	cells        int // number of glyphs placed
}

func planGrid(n, cellW, cellH int, layout Layout) (grid, error) {
	if n <= 0 {
		return grid{}, errors.Wrapf(ErrInvalidInput, "glyph count %d", n)
	}
	if cellW <= 0 || cellH <= 0 {
		return grid{}, errors.Wrapf(ErrInvalidInput, "glyph cell %dx%d", cellW, cellH)
	}
	g := grid{cellW: cellW, cellH: cellH}
	if layout == LayoutCover {
		g.cols = isqrt(n)
		if g.cols*g.cols < n {
			g.cols++
		}
		g.rows = (n + g.cols - 1) / g.cols
		g.cells = n
		return g, nil
	}
	dim := isqrt(n)
	g.cols, g.rows, g.cells = dim, dim, dim*dim
	return g, nil
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int) int {
	r := int(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

func (g grid) textureSize() (w, h int) { return g.cellW * g.cols, g.cellH * g.rows }
