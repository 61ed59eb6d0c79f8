package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"

	"gonum.org/v1/gonum/stat"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/gotrack/analyze"
	"github.com/phil-mansfield/gotrack/io"
	"github.com/phil-mansfield/gotrack/particle"
)

func main() {
	var (
		phase, tune  string
		out, logFile string
	)
	vars := map[string]*string{
		"Phase": &phase,
		"Tune":  &tune,
	}

	flag.StringVar(
		&phase, "Phase", "",
		"Dump file to draw phase-space scatter figures from.",
	)
	flag.StringVar(
		&tune, "Tune", "",
		"Dump file or particle table to measure betatron tunes from.",
	)
	flag.StringVar(
		&out, "Out", ".",
		"Directory to write figures into.",
	)
	flag.StringVar(
		&logFile, "Log", "",
		"File to redirect log statements to.",
	)

	flag.Parse()

	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer f.Close()
		log.SetOutput(f)
	}

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Phase":
		phaseMain(phase, out)
	case "Tune":
		tuneMain(tune, out)
	default:
		panic("Impossible")
	}

	plt.Execute()
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but gotrack_analyze "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func phaseMain(fname, dir string) {
	log.Println("Running Phase mode.")

	hd, snaps, err := io.ReadDump(fname)
	if err != nil {
		log.Fatal(err.Error())
	}
	if len(snaps) == 0 {
		log.Fatalf("%s contains no snapshots.", fname)
	}

	snap := snaps[len(snaps)-1]
	ps := snap.Particles

	xs, xps := analyze.Transverse(ps, analyze.Horizontal)
	plotPhase(path.Join(dir, "phase_x.png"), xs, xps, snap.Time,
		`$x$ [m]`, `$x'$`)

	ys, yps := analyze.Transverse(ps, analyze.Vertical)
	plotPhase(path.Join(dir, "phase_y.png"), ys, yps, snap.Time,
		`$y$ [m]`, `$y'$`)

	zs, deltas := analyze.Longitudinal(ps, hd.PRef)
	plotPhase(path.Join(dir, "phase_z.png"), zs, deltas, snap.Time,
		`$z - \langle z \rangle$ [m]`, `$\delta$`)
}

func plotPhase(fname string, xs, ys []float64, t float64, xlabel, ylabel string) {
	plt.Figure(plt.FigSize(8, 8))
	plt.Plot(xs, ys, "ok")
	plt.Title(fmt.Sprintf(`$t$ = %.4g s`, t))
	plt.XLabel(xlabel, plt.FontSize(16))
	plt.YLabel(ylabel, plt.FontSize(16))
	plt.SaveFig(fname)
}

func tuneMain(fname, dir string) {
	log.Println("Running Tune mode.")

	xs, ys := tuneSeries(fname)

	qx, specX := analyze.Tune(xs)
	qy, specY := analyze.Tune(ys)
	if specX == nil {
		log.Fatal("Need at least two samples to measure a tune.")
	}

	fmt.Printf("# %10s %10s\n", "Plane", "Tune")
	fmt.Printf("  %10s %10.6g\n", "x", qx)
	fmt.Printf("  %10s %10.6g\n", "y", qy)

	n := len(xs)
	freqs := make([]float64, len(specX))
	for i := range freqs {
		freqs[i] = float64(i) / float64(n)
	}

	plt.Figure()
	plt.Plot(freqs, specX, "k", plt.LW(2))
	plt.Plot(freqs, specY, "b", plt.LW(2))
	plt.Title(fmt.Sprintf(`$Q_x$ = %.4g, $Q_y$ = %.4g`, qx, qy))
	plt.XLabel(`$Q$`, plt.FontSize(16))
	plt.YLabel("Amplitude", plt.FontSize(16))
	plt.SaveFig(path.Join(dir, "tune.png"))
}

// tuneSeries extracts one sample per snapshot from a dump (the beam
// centroid), or one sample per row from a particle table.
func tuneSeries(fname string) (xs, ys []float64) {
	_, snaps, err := io.ReadDump(fname)
	if err == nil {
		xs = make([]float64, 0, len(snaps))
		ys = make([]float64, 0, len(snaps))
		for _, snap := range snaps {
			sx, _ := analyze.Transverse(snap.Particles, analyze.Horizontal)
			sy, _ := analyze.Transverse(snap.Particles, analyze.Vertical)
			if len(sx) == 0 {
				continue
			}
			xs = append(xs, stat.Mean(sx, nil))
			ys = append(ys, stat.Mean(sy, nil))
		}
		return xs, ys
	}

	ps, tabErr := io.ReadParticleTable(fname, particle.Proton)
	if tabErr != nil {
		log.Fatalf("Could not read %s as a dump or a table.", fname)
	}

	xs = make([]float64, len(ps))
	ys = make([]float64, len(ps))
	for i := range ps {
		xs[i] = ps[i].Pos.X
		ys[i] = ps[i].Pos.Y
	}
	return xs, ys
}
