package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/analyze"
	"github.com/phil-mansfield/gotrack/beam"
	"github.com/phil-mansfield/gotrack/constants"
	"github.com/phil-mansfield/gotrack/engine"
	"github.com/phil-mansfield/gotrack/integrate"
	"github.com/phil-mansfield/gotrack/io"
	"github.com/phil-mansfield/gotrack/lattice"
	"github.com/phil-mansfield/gotrack/particle"
)

type FileGroup struct {
	log, prof *os.File
}

func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		track, fodo, config string
		logFile, profFile   string
	)
	vars := map[string]*string{
		"Track":  &track,
		"FODO":   &fodo,
		"Config": &config,
	}

	flag.StringVar(
		&track, "Track", "",
		"Configuration file for [Track] mode.",
	)
	flag.StringVar(
		&fodo, "FODO", "",
		"Number of FODO cells to build and track with the default beam.",
	)
	flag.StringVar(
		&config, "Config", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. Accepted arguments are 'Track', 'Sim', and 'Lattice'.",
	)
	flag.StringVar(
		&logFile, "Log", "",
		"File to redirect log statements to.",
	)
	flag.StringVar(
		&profFile, "PProf", "",
		"File to write a CPU profile to.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Track":
		con, err := io.ReadTrackConfig(track)
		if err != nil {
			log.Fatal(err.Error())
		}

		// Flags win over the config file so a one-off profile doesn't
		// need an edited config.
		if logFile == "" {
			logFile = con.LogFile
		}
		if profFile == "" {
			profFile = con.ProfileFile
		}

		fg := setupFiles(logFile, profFile)
		defer fg.Close()
		trackMain(con)

	case "FODO":
		n, err := strconv.Atoi(fodo)
		if err != nil || n < 1 {
			log.Fatalf(
				"Invalid 'FODO' argument '%s'. It must be a positive "+
					"cell count.", fodo,
			)
		}

		fg := setupFiles(logFile, profFile)
		defer fg.Close()
		fodoMain(n)

	case "Config":
		switch config {
		case "Track":
			fmt.Println(io.ExampleTrackFile)
		case "Sim":
			fmt.Println(io.ExampleSimFile)
		case "Lattice":
			fmt.Println(io.ExampleLatticeFile)
		default:
			log.Fatal(
				"Unrecognized 'Config' argument. Only recognized " +
					"arguments are 'Track', 'Sim', and 'Lattice'.",
			)
		}
	default:
		panic("Impossible")
	}
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
			"The following flags were set: %s, but gotrack "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func setupFiles(logFile, profFile string) *FileGroup {
	fg := &FileGroup{}
	var err error

	if logFile != "" {
		fg.log, err = os.Create(logFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if profFile != "" {
		fg.prof, err = os.Create(profFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}

func trackMain(con *io.TrackConfig) {
	log.Println("Running Track mode.")

	sim := io.DefaultSimConfig()
	if con.SimFile != "" {
		sf, err := io.LoadSim(con.SimFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		sim = sf.Simulation
	}

	l, err := io.LoadLattice(con.LatticeFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	e := engine.New()
	e.SetTimeStep(sim.TimeStep)
	e.SetTimeScale(sim.TimeScale)
	e.SetIntegrator(integrate.Type(sim.IntegratorType))
	e.SetLattice(l)

	// Start resets the particle system, so the beam comes after it.
	e.Start()
	params := beam.DefaultParams()
	params.N = sim.ParticleCount
	params.KineticEnergy = sim.BeamEnergy * constants.EV
	e.System().Generate(params)

	var w *io.DumpWriter
	snaps := 0
	if con.DumpFile != "" {
		w, err = io.NewDumpWriter(con.DumpFile, &io.DumpHeader{
			Count:    int64(e.System().Len()),
			TimeStep: sim.TimeStep,
			PRef:     e.System().ReferenceMomentum(),
			Mass:     params.Species.Mass,
			Charge:   params.Species.Charge,
		})
		if err != nil {
			log.Fatal(err.Error())
		}
		if err := w.Append(e.SimTime(), e.System().Particles()); err != nil {
			log.Fatal(err.Error())
		}
		snaps++
	}

	frameTime := 1.0 / float64(con.FrameRate)
	frames := int(con.Seconds * float64(con.FrameRate))
	dumped := e.StepCount()

	for i := 0; i < frames; i++ {
		e.Update(frameTime)

		if w != nil && e.StepCount()-dumped >= uint64(con.DumpEvery) {
			err := w.Append(e.SimTime(), e.System().Particles())
			if err != nil {
				log.Fatal(err.Error())
			}
			dumped = e.StepCount()
			snaps++
		}
	}

	if w != nil {
		if err := w.Close(); err != nil {
			log.Fatal(err.Error())
		}
		log.Printf("Track: Wrote %d snapshots to %s", snaps, con.DumpFile)
	}

	printEngineStats(e)
}

func fodoMain(n int) {
	log.Println("Running FODO mode.")

	l := lattice.New()
	l.BuildFODOLattice(lattice.DefaultFODOParams(), n)

	e := engine.New()
	e.SetLattice(l)
	e.Start()
	e.InitDefaultBeam()

	// Two passes through the line at the default beam's velocity.
	p := particle.Proton.New()
	p.SetKineticEnergy(beam.DefaultParams().KineticEnergy, r3.Vec{Z: 1})
	duration := 2 * l.TotalLength() / (p.Beta() * constants.C)

	for e.SimTime() < duration {
		e.Update(1000 * e.TimeStep())
	}

	fmt.Printf("# %-12s %6s %12s %12s %12s\n",
		"Component", "Kind", "s (m)", "L (m)", "Strength")
	for _, c := range l.Components() {
		fmt.Printf("  %-12s %6s %12.6g %12.6g %12.6g\n",
			c.Name(), c.Kind(), c.SPosition(), c.Length(), c.Gradient())
	}

	printEngineStats(e)

	stats := e.System().Statistics()
	fmt.Printf("# %12s %12s %12s %12s %12s\n",
		"RMS x (m)", "RMS y (m)", "Emit x (m)", "Emit y (m)", "E (eV)")
	fmt.Printf("  %12.6g %12.6g %12.6g %12.6g %12.6g\n",
		stats.RMSSize.X, stats.RMSSize.Y,
		stats.EmittanceX, stats.EmittanceY,
		stats.MeanEnergy/constants.EV)

	sum := analyze.Summarize(e.System().Particles())
	fmt.Printf("# %12s %12s %12s %12s\n",
		"Mean pT", "Eta spread", "Phi spread", "Inv. mass")
	fmt.Printf("  %12.6g %12.6g %12.6g %12.6g\n",
		sum.MeanPt, sum.EtaSpread, sum.PhiSpread, sum.InvariantMass)
}

func printEngineStats(e *engine.Engine) {
	stats := e.Stats()
	fmt.Printf("# %12s %12s %12s %12s %12s\n",
		"Steps", "Time (s)", "Particles", "Lost", "Mean E (eV)")
	fmt.Printf("  %12d %12.6g %12d %12d %12.6g\n",
		stats.StepCount, stats.SimulationTime, stats.ParticleCount,
		stats.LostParticleCount, stats.AverageEnergy/constants.EV)
}
