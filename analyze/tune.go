/*package analyze computes figures of merit from tracked beams: the
betatron tune of turn-by-turn detector records and collider-style
kinematic summaries of phase-space snapshots.
*/
package analyze

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/gotrack/lattice"
)

// Plane selects a transverse coordinate.
type Plane int

const (
	Horizontal Plane = iota
	Vertical
)

// Tune returns the strongest oscillation frequency in xs as a fraction
// of the sampling rate, along with the one-sided magnitude spectrum.
// The signal is mean-subtracted first, so the peak search runs over
// the fractional frequencies (0, 1/2]. Fewer than two samples return
// a zero tune and a nil spectrum.
func Tune(xs []float64) (tune float64, spectrum []float64) {
	n := len(xs)
	if n < 2 {
		return 0, nil
	}

	sig := make([]float64, n)
	mean := stat.Mean(xs, nil)
	for i, x := range xs {
		sig[i] = x - mean
	}

	coeffs := fft.FFTReal(sig)
	spectrum = make([]float64, n/2+1)
	for i := range spectrum {
		spectrum[i] = cmplx.Abs(coeffs[i])
	}

	k := floats.MaxIdx(spectrum[1:]) + 1
	return float64(k) / float64(n), spectrum
}

// TuneFromHits measures the tune in one transverse plane from a
// detector's hit records, taken in the order they were recorded. One
// hit per pass through the detector gives the betatron tune directly.
func TuneFromHits(hits []lattice.Hit, plane Plane) (float64, []float64) {
	xs := make([]float64, len(hits))
	for i, h := range hits {
		if plane == Vertical {
			xs[i] = h.Pos.Y
		} else {
			xs[i] = h.Pos.X
		}
	}
	return Tune(xs)
}
