// Package mockdata generates reproducible synthetic station records for demos
// and tests. The series follows a seasonal cycle with a linear warming trend,
// Gaussian day-to-day noise, and occasional gaps and missing readings.
package mockdata

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat/distuv"
)

// StationID is written to the station column of generated files.
const StationID = "16412"

// Options control the generated series.
type Options struct {
	Start time.Time
	End   time.Time
	Seed  uint64

	AnnualMean   float64 // °C
	Amplitude    float64 // half the summer/winter difference, °C
	TrendPerDec  float64 // °C per decade from Start
	Noise        float64 // standard deviation of the daily anomaly, °C
	GapRate      float64 // probability a day has no row
	MissingRate  float64 // probability a reading is missing
	DiurnalRange float64 // mean Tmax - Tmin, °C
}

// DefaultOptions resemble a central European lowland station from 1961 on.
func DefaultOptions() Options {
	return Options{
		Start:        time.Date(1961, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Seed:         1,
		AnnualMean:   9.5,
		Amplitude:    10.5,
		TrendPerDec:  0.35,
		Noise:        3,
		GapRate:      0.001,
		MissingRate:  0.002,
		DiurnalRange: 10,
	}
}

// Generate returns one observation per day between Start and End inclusive,
// minus gaps. Within a row min <= mean <= max whenever all three are present.
func Generate(o Options) domain.Series {
	src := rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	noise := distuv.Normal{Mu: 0, Sigma: o.Noise, Src: src}
	spread := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	gap := distuv.Bernoulli{P: o.GapRate, Src: src}
	missing := distuv.Bernoulli{P: o.MissingRate, Src: src}

	var s domain.Series
	for d := o.Start; !d.After(o.End); d = d.AddDate(0, 0, 1) {
		if gap.Rand() == 1 {
			continue
		}

		years := d.Sub(o.Start).Hours() / 24 / 365.25
		season := -math.Cos(2 * math.Pi * float64(d.YearDay()-15) / 365.25)
		mean := o.AnnualMean + o.Amplitude*season + o.TrendPerDec*years/10 + noise.Rand()

		half := o.DiurnalRange / 2
		t := domain.Temps{
			Mean: round1(mean),
			Min:  round1(mean - half - math.Abs(spread.Rand())),
			Max:  round1(mean + half + math.Abs(spread.Rand())),
		}
		if missing.Rand() == 1 {
			t.Set(domain.Variables()[rng.IntN(3)], math.NaN())
		}
		s = append(s, domain.Observation{Date: d, Values: t})
	}
	return s
}

// WriteCSV writes s in the station export layout: time, station and the
// three temperature columns. Missing readings are written as NaN.
func WriteCSV(w io.Writer, s domain.Series) error {
	times := make([]string, len(s))
	stations := make([]string, len(s))
	cols := map[domain.Variable][]float64{}
	for _, v := range domain.Variables() {
		cols[v] = make([]float64, len(s))
	}
	for i, o := range s {
		times[i] = o.Date.Format("2006-01-02T15:04-07:00")
		stations[i] = StationID
		for _, v := range domain.Variables() {
			cols[v][i] = o.Values.Get(v)
		}
	}

	df := dataframe.New(
		series.New(times, series.String, "time"),
		series.New(stations, series.String, "station"),
		series.New(cols[domain.MeanTemp], series.Float, domain.MeanTemp.Column()),
		series.New(cols[domain.MinTemp], series.Float, domain.MinTemp.Column()),
		series.New(cols[domain.MaxTemp], series.Float, domain.MaxTemp.Column()),
	)
	if df.Err != nil {
		return fmt.Errorf("build frame: %w", df.Err)
	}
	return df.WriteCSV(w)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
