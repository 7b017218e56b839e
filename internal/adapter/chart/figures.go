package chart

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// saveAnomalies draws the monthly mean temperature anomaly timeline with the
// hottest years highlighted.
func saveAnomalies(r domain.Report, path string) error {
	p := newPlot(
		fmt.Sprintf("%s: monthly mean temperature anomalies %s (baseline %s)", r.Station, r.AnomalyPeriod, r.Climatology.Baseline),
		"Year", "Anomaly (°C)",
	)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Add(plotter.NewGrid())

	all := make(plotter.XYs, len(r.Anomalies))
	for i, a := range r.Anomalies {
		all[i] = plotter.XY{X: unix(a.Key().Mid()), Y: a.Values.Mean}
	}
	if err := addLines(p, segments(all), lightGray, vg.Points(1), "Monthly anomaly"); err != nil {
		return err
	}

	for i, hot := range r.HottestYears() {
		var pts plotter.XYs
		for _, a := range r.Anomalies {
			if a.Year == hot.Year {
				pts = append(pts, plotter.XY{X: unix(a.Key().Mid()), Y: a.Values.Mean})
			}
		}
		label := fmt.Sprintf("%d (%+.2f °C)", hot.Year, hot.Value)
		if err := addLines(p, segments(pts), paletteRed(i), vg.Points(2), label); err != nil {
			return err
		}
	}

	return p.Save(12*vg.Inch, 5*vg.Inch, path)
}

// saveDistribution stacks one panel per variable showing the 10–90 % and
// 25–75 % bands and the median of every calendar month.
func saveDistribution(r domain.Report, path string) error {
	panels := []struct {
		v domain.Variable
		c color.NRGBA
	}{
		{domain.MinTemp, blue},
		{domain.MeanTemp, green},
		{domain.MaxTemp, red},
	}

	plots := make([][]*plot.Plot, len(panels))
	for i, panel := range panels {
		p, err := distributionPanel(r.Distribution, panel.v, panel.c)
		if err != nil {
			return fmt.Errorf("%s panel: %w", panel.v, err)
		}
		plots[i] = []*plot.Plot{p}
	}
	plots[0][0].Title.Text = fmt.Sprintf("%s: monthly temperature distributions %s\n%s",
		r.Station, joinYears(r.Distribution.Years), plots[0][0].Title.Text)

	img := vgimg.New(10*vg.Inch, 12*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      1,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func distributionPanel(d domain.Distribution, v domain.Variable, c color.NRGBA) (*plot.Plot, error) {
	p := newPlot(v.Label(), "", "°C")
	p.X.Tick.Marker = monthTicks()
	p.X.Min, p.X.Max = 0.5, 12.5
	p.Add(plotter.NewGrid())

	x := make([]float64, 12)
	var p10, p25, med, p75, p90 [12]float64
	for i, m := range d.Months {
		q := m.Get(v)
		x[i] = float64(i + 1)
		p10[i], p25[i], med[i], p75[i], p90[i] = q.P10, q.P25, q.Median, q.P75, q.P90
	}

	fills := []struct {
		lo, hi []float64
		alpha  uint8
		label  string
	}{
		{p10[:], p90[:], 38, "10-90 %"},
		{p25[:], p75[:], 77, "25-75 %"},
	}
	for _, f := range fills {
		for i, outline := range bands(x, f.lo, f.hi) {
			poly, err := plotter.NewPolygon(outline)
			if err != nil {
				return nil, err
			}
			poly.Color = withAlpha(c, f.alpha)
			poly.LineStyle.Width = 0
			p.Add(poly)
			if i == 0 {
				p.Legend.Add(f.label, poly)
			}
		}
	}

	medians := make(plotter.XYs, 12)
	for i := range medians {
		medians[i] = plotter.XY{X: x[i], Y: med[i]}
	}
	if err := addLines(p, segments(medians), c, vg.Points(2), "Median"); err != nil {
		return nil, err
	}
	return p, nil
}

// saveExtremes draws the yearly counts of hot days and tropical nights.
func saveExtremes(r domain.Report, path string) error {
	p := newPlot(
		fmt.Sprintf("%s: hot days (Tmax ≥ %g °C) and tropical nights (Tmin ≥ %g °C)",
			r.Station, r.Thresholds.HotDay, r.Thresholds.TropicalNight),
		"Year", "Days",
	)
	p.Add(plotter.NewGrid())

	hot := make(plotter.XYs, len(r.Extremes))
	tropical := make(plotter.XYs, len(r.Extremes))
	for i, e := range r.Extremes {
		hot[i] = plotter.XY{X: float64(e.Year), Y: float64(e.HotDays)}
		tropical[i] = plotter.XY{X: float64(e.Year), Y: float64(e.TropicalNights)}
	}

	for _, s := range []struct {
		pts   plotter.XYs
		c     color.Color
		label string
	}{
		{hot, red, "Hot days"},
		{tropical, blue, "Tropical nights"},
	} {
		if len(s.pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(s.pts)
		if err != nil {
			return err
		}
		line.Color = s.c
		points.Color = s.c
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(2)
		p.Add(line, points)
		p.Legend.Add(s.label, line, points)
	}

	return p.Save(12*vg.Inch, 5*vg.Inch, path)
}

func addLines(p *plot.Plot, segs []plotter.XYs, c color.Color, width vg.Length, label string) error {
	for i, seg := range segs {
		l, err := plotter.NewLine(seg)
		if err != nil {
			return err
		}
		l.Color = c
		l.Width = width
		p.Add(l)
		if i == 0 && label != "" {
			p.Legend.Add(label, l)
		}
	}
	return nil
}

func monthTicks() plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, 12)
	for i := range ticks {
		ticks[i] = plot.Tick{Value: float64(i + 1), Label: time.Month(i + 1).String()[:3]}
	}
	return ticks
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

func unix(t time.Time) float64 { return float64(t.Unix()) }
