package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/constants"
	"github.com/phil-mansfield/gotrack/integrate"
	"github.com/phil-mansfield/gotrack/lattice"
	"github.com/phil-mansfield/gotrack/particle"
)

func TestStepBookkeeping(t *testing.T) {
	e := New()
	e.Step()

	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.StepCount)
	assert.Equal(t, 0, stats.ParticleCount)
	assert.Equal(t, 1e-11, stats.SimulationTime)
	assert.Equal(t, 1e-11, e.SimTime())
}

func TestStateMachine(t *testing.T) {
	e := New()
	assert.Equal(t, Stopped, e.State())

	// Pause and Resume only act from Running and Paused.
	e.Pause()
	assert.Equal(t, Stopped, e.State())
	e.Resume()
	assert.Equal(t, Stopped, e.State())

	e.Start()
	assert.Equal(t, Running, e.State())
	e.Pause()
	assert.Equal(t, Paused, e.State())
	e.Resume()
	assert.Equal(t, Running, e.State())
	e.Stop()
	assert.Equal(t, Stopped, e.State())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "Stopped", Stopped.String())
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "Paused", Paused.String())
	assert.Equal(t, "Unknown", State(9).String())
}

func TestStartFromStoppedResets(t *testing.T) {
	e := New()

	// A beam generated before Start is wiped by the implicit reset;
	// generate after Start.
	e.InitDefaultBeam()
	e.Start()
	assert.Equal(t, 0, e.System().Len())

	e.InitDefaultBeam()
	require.Equal(t, 1000, e.System().Len())

	// Start from Paused continues without resetting.
	e.Pause()
	e.Start()
	assert.Equal(t, Running, e.State())
	assert.Equal(t, 1000, e.System().Len())
}

func TestResetPreservesConfig(t *testing.T) {
	e := New()
	e.SetTimeStep(5e-12)
	e.SetTimeScale(2.0)
	e.SetIntegrator(integrate.RK4)
	l := lattice.New()
	l.AddDrift(1.0, "")
	e.SetLattice(l)

	e.Start()
	e.Update(1e-9)
	require.NotZero(t, e.StepCount())

	e.Reset()
	assert.Equal(t, uint64(0), e.StepCount())
	assert.Equal(t, 0.0, e.SimTime())
	assert.Equal(t, 0, e.System().Len())
	assert.Equal(t, 5e-12, e.TimeStep())
	assert.Equal(t, 2.0, e.TimeScale())
	assert.Equal(t, integrate.RK4, e.IntegratorType())
	assert.Same(t, l, e.Lattice())
}

func TestUpdateAccumulator(t *testing.T) {
	e := New()
	e.SetTimeStep(0.25)

	// Not running: updates are ignored.
	e.Update(1.0)
	assert.Equal(t, uint64(0), e.StepCount())

	e.Start()
	e.Update(1.0)
	assert.Equal(t, uint64(4), e.StepCount())
	e.Update(0.5)
	assert.Equal(t, uint64(6), e.StepCount())

	// Less than one step of banked time carries over.
	e.Update(0.125)
	assert.Equal(t, uint64(6), e.StepCount())
	e.Update(0.125)
	assert.Equal(t, uint64(7), e.StepCount())
}

func TestUpdateStepCap(t *testing.T) {
	e := New()
	e.SetTimeStep(0.25)
	e.SetMaxStepsPerFrame(3)
	e.Start()

	// One second banks four steps but the cap allows three. The
	// residual equals one step exactly, so it is kept.
	e.Update(1.0)
	assert.Equal(t, uint64(3), e.StepCount())
	e.Update(0.0)
	assert.Equal(t, uint64(4), e.StepCount())

	// A residual beyond one step is discarded.
	e.Update(2.0)
	assert.Equal(t, uint64(7), e.StepCount())
	e.Update(0.0)
	assert.Equal(t, uint64(7), e.StepCount())
}

func TestTimeScale(t *testing.T) {
	e := New()
	dt := 1.0 / 1024.0
	e.SetTimeStep(dt)
	e.SetTimeScale(128.0)
	e.Start()

	// Two steps' worth of real time banks 256 steps at 128x.
	e.Update(0.001953125)
	assert.Equal(t, uint64(256), e.StepCount())

	e.SetTimeScale(-3.0)
	assert.Equal(t, 0.0, e.TimeScale())
	e.Update(1.0)
	assert.Equal(t, uint64(256), e.StepCount())
}

func TestStepsPerSecondWindow(t *testing.T) {
	e := New()
	dt := 1.0 / 1024.0
	e.SetTimeStep(dt)
	e.Start()

	e.Update(0.5)
	assert.Equal(t, uint64(512), e.StepCount())
	assert.Equal(t, 0.0, e.Stats().StepsPerSecond)

	e.Update(0.5)
	assert.Equal(t, uint64(1024), e.StepCount())
	assert.Equal(t, 1024.0, e.Stats().StepsPerSecond)
}

func TestSetLatticeRebuildsFields(t *testing.T) {
	e := New()
	l := lattice.New()
	l.BuildFODOCell(lattice.DefaultFODOParams(), "")
	l.Compute()

	e.SetLattice(l)
	assert.Equal(t, 2, e.Fields().Len())

	// Installing again does not duplicate sources.
	e.SetLattice(l)
	assert.Equal(t, 2, e.Fields().Len())

	// Clearing the lattice keeps the last field set.
	e.SetLattice(nil)
	assert.Equal(t, 2, e.Fields().Len())
}

func TestLossDetection(t *testing.T) {
	l := lattice.New()
	l.Add(lattice.NewBeamPipe("D1", 1.0, lattice.CircularAperture(0.05)))
	l.Compute()

	e := New()
	e.SetLattice(l)

	add := func(x, z float64) {
		p := particle.Proton.New()
		p.Pos = r3.Vec{X: x, Z: z}
		e.System().Add(p)
	}
	add(0.001, 0.5) // inside the pipe
	add(0.2, 0.5)   // outside the pipe, beyond the fallback cut
	add(0.08, 0.5)  // outside the pipe, inside the fallback cut
	add(0.0, 5.0)   // past the pipe end, on axis

	var lost []int64
	e.OnLoss(func(p *particle.Particle) { lost = append(lost, p.ID) })

	e.Step()

	assert.True(t, e.System().Particle(0).Active)
	assert.False(t, e.System().Particle(1).Active)
	assert.True(t, e.System().Particle(2).Active)
	assert.True(t, e.System().Particle(3).Active)
	assert.Equal(t, 1, e.LostCount())
	assert.Equal(t, []int64{1}, lost)

	// Already-lost particles are not reported again.
	e.Step()
	assert.Equal(t, 1, e.LostCount())
	assert.Len(t, lost, 1)
}

func TestNoLossWithoutComponents(t *testing.T) {
	e := New()
	p := particle.Proton.New()
	p.Pos = r3.Vec{X: 50}
	e.System().Add(p)

	e.Step()
	assert.True(t, e.System().Particle(0).Active)

	// An empty lattice cannot lose particles either.
	e.SetLattice(lattice.New())
	e.Step()
	assert.True(t, e.System().Particle(0).Active)
	assert.Equal(t, 0, e.LostCount())
}

func TestDetectorCrossing(t *testing.T) {
	l := lattice.New()
	det := lattice.NewDetector("BPM1", lattice.CircularAperture(0.05))
	det.SetPosition(r3.Vec{Z: 1})
	l.Add(det)

	e := New()
	e.SetLattice(l)
	e.SetTimeStep(1e-9)

	add := func(pos r3.Vec, v r3.Vec) {
		p := particle.Proton.New()
		p.Pos = pos
		p.SetVelocity(v)
		e.System().Add(p)
	}
	v := 0.9 * constants.C
	add(r3.Vec{X: 0.001, Z: 0.9}, r3.Vec{Z: v})  // crosses inside aperture
	add(r3.Vec{X: 0.2, Z: 0.9}, r3.Vec{Z: v})    // crosses outside aperture
	add(r3.Vec{X: 0.001, Z: 1.2}, r3.Vec{Z: -v}) // crosses backward

	e.Step()

	require.Equal(t, 1, det.HitCount())
	hit := det.Hits()[0]
	assert.Equal(t, int64(0), hit.ParticleID)
	assert.Equal(t, 1e-9, hit.Time)
	assert.InDelta(t, 0.9+v*1e-9, hit.Pos.Z, 1e-9)

	// A particle already past the plane does not hit again.
	e.Step()
	assert.Equal(t, 1, det.HitCount())
}

func TestFODOTracking(t *testing.T) {
	l := lattice.New()
	l.BuildFODOCell(lattice.DefaultFODOParams(), "")
	l.Compute()

	e := New()
	e.SetLattice(l)
	e.Start()
	e.InitDefaultBeam()
	require.Equal(t, 1000, e.System().Len())

	for i := 0; i < 100; i++ {
		e.Step()
	}
	e.Update(0) // refresh the stats roll-up

	stats := e.Stats()
	assert.Equal(t, 1000, stats.ParticleCount)
	assert.Equal(t, 0, stats.LostParticleCount)
	assert.Equal(t, uint64(100), stats.StepCount)

	// Mean kinetic energy stays at the 1 GeV the beam was born with.
	want := 1e9 * constants.E
	assert.InEpsilon(t, want, stats.AverageEnergy, 0.01)
	assert.Less(t, stats.EnergySpread, 0.01*want)
}
