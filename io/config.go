package io

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

const ExampleTrackFile = `[Track]

#######################
# Required Parameters #
#######################

# JSON file describing the beamline. Print a starting point with the
# -Config Lattice mode.
LatticeFile = path/to/lattice.json

#######################
# Optional Parameters #
#######################

# JSON file with simulation parameters (time step, time scale,
# integrator, beam size and energy). Built-in defaults are used when
# this is not set.
# SimFile = path/to/sim.json

# Real-world seconds to drive the simulation for, and the frame rate
# to drive it at. The simulated time covered is Seconds * the time
# scale from the simulation file.
# Seconds = 5.0
# FrameRate = 60

# Binary phase-space dump. A snapshot of every particle is appended
# every DumpEvery integration steps. No dump is written when DumpFile
# is not set.
# DumpFile = path/to/run.dump
# DumpEvery = 100

# Output files which are useful for profiling and debugging. Generally,
# there isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`

// TrackConfig is the [Track] section of a run configuration file.
type TrackConfig struct {
	// Required
	LatticeFile string

	// Optional
	SimFile   string
	Seconds   float64
	FrameRate int
	DumpFile  string
	DumpEvery int

	LogFile, ProfileFile string
}

// TrackWrapper names the section for gcfg.
type TrackWrapper struct {
	Track TrackConfig
}

// DefaultTrackWrapper returns a wrapper with the default drive and
// dump cadence filled in.
func DefaultTrackWrapper() *TrackWrapper {
	con := TrackConfig{}
	con.Seconds = 5.0
	con.FrameRate = 60
	con.DumpEvery = 100
	return &TrackWrapper{con}
}

// CheckInit validates a parsed [Track] section.
func (con *TrackConfig) CheckInit() error {
	if con.LatticeFile == "" {
		return fmt.Errorf("Need to specify a 'LatticeFile' for [Track].")
	}

	if con.Seconds <= 0 {
		return fmt.Errorf(
			"'Seconds' for [Track] must be positive, but is %g.",
			con.Seconds,
		)
	} else if con.FrameRate <= 0 {
		return fmt.Errorf(
			"'FrameRate' for [Track] must be positive, but is %d.",
			con.FrameRate,
		)
	} else if con.DumpEvery <= 0 {
		return fmt.Errorf(
			"'DumpEvery' for [Track] must be positive, but is %d.",
			con.DumpEvery,
		)
	}

	return nil
}

// ReadTrackConfig reads and validates a [Track] run configuration.
func ReadTrackConfig(fname string) (*TrackConfig, error) {
	wrap := DefaultTrackWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.Track.CheckInit(); err != nil {
		return nil, err
	}
	return &wrap.Track, nil
}
