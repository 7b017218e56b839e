package chart

import (
	"math"

	"gonum.org/v1/plot/plotter"
)

// segments splits xys at non-finite points so lines never bridge gaps.
func segments(xys plotter.XYs) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for _, p := range xys {
		if !finite(p.X) || !finite(p.Y) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, p)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// bands builds closed polygon outlines between lo and hi over x. Runs are cut
// where either bound is NaN; runs shorter than two points are dropped.
func bands(x, lo, hi []float64) []plotter.XYs {
	var out []plotter.XYs
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= 2 {
			out = append(out, outline(x[start:end], lo[start:end], hi[start:end]))
		}
		start = -1
	}
	for i := range x {
		if !finite(lo[i]) || !finite(hi[i]) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(x))
	return out
}

func outline(x, lo, hi []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, 2*len(x))
	for i := range x {
		pts = append(pts, plotter.XY{X: x[i], Y: hi[i]})
	}
	for i := len(x) - 1; i >= 0; i-- {
		pts = append(pts, plotter.XY{X: x[i], Y: lo[i]})
	}
	return pts
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
