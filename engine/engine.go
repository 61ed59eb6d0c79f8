/*package engine drives the fixed-step simulation loop. An Engine owns
the particle ensemble and the field manager, holds a reference to the
lattice being simulated, and advances active particles with the
selected integrator while watching for aperture losses.

The loop is cooperative and single-threaded: the caller drives it by
calling Update once per frame with the elapsed real time, and the
engine converts that to a whole number of fixed dt steps through an
accumulator. Nothing in the engine blocks or spawns goroutines.*/
package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/beam"
	"github.com/phil-mansfield/gotrack/field"
	"github.com/phil-mansfield/gotrack/integrate"
	"github.com/phil-mansfield/gotrack/lattice"
	"github.com/phil-mansfield/gotrack/particle"
)

// State is the run state of the simulation loop.
type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	}
	return "Unknown"
}

// Stats is a snapshot of the simulation bookkeeping.
type Stats struct {
	SimulationTime    float64 // total simulated time (s)
	StepCount         uint64
	StepsPerSecond    float64 // measured over >= 1 s real-time windows
	ParticleCount     int     // active particles
	LostParticleCount int
	AverageEnergy     float64 // mean kinetic energy of actives (J)
	EnergySpread      float64 // RMS kinetic energy of actives (J)
}

// LossFunc is called for each particle the moment it is lost.
type LossFunc func(p *particle.Particle)

// lossRadius is the fallback transverse cut applied to particles that
// no component claims. Particles drifting between widely separated
// components can trip it even on legitimate orbits.
const lossRadius = 0.1

// Engine is the simulation scheduler. The zero value is not usable;
// construct with New.
type Engine struct {
	system *beam.System
	fields *field.Manager
	lat    *lattice.Lattice

	integ     integrate.Integrator
	integType integrate.Type

	state     State
	dt        float64
	timeScale float64
	bank      float64
	simTime   float64
	maxSteps  int

	stats  Stats
	onLoss LossFunc

	windowTime  float64
	windowSteps uint64

	dets []*lattice.Component
	prev []r3.Vec
}

// New returns a stopped engine with a 10 ps time step, real-time
// scaling, a 10000 step-per-frame cap, and the Boris integrator.
func New() *Engine {
	e := &Engine{
		system:    beam.NewSystem(),
		fields:    field.NewManager(),
		dt:        1e-11,
		timeScale: 1.0,
		maxSteps:  10000,
	}
	e.SetIntegrator(integrate.Boris)
	return e
}

// System returns the particle ensemble the engine steps.
func (e *Engine) System() *beam.System { return e.system }

// Fields returns the engine's field manager.
func (e *Engine) Fields() *field.Manager { return e.fields }

// Lattice returns the lattice under simulation, or nil.
func (e *Engine) Lattice() *lattice.Lattice { return e.lat }

// SetLattice installs the machine to simulate and rebuilds the field
// manager from its components.
func (e *Engine) SetLattice(l *lattice.Lattice) {
	e.lat = l
	if e.lat != nil {
		e.fields.Clear()
		e.lat.PopulateFields(e.fields)
	}
}

// SetIntegrator selects the stepping scheme.
func (e *Engine) SetIntegrator(t integrate.Type) {
	e.integType = t
	e.integ = integrate.New(t)
}

// Integrator returns the active stepping scheme.
func (e *Engine) Integrator() integrate.Integrator { return e.integ }

// IntegratorType returns the active scheme's type code.
func (e *Engine) IntegratorType() integrate.Type { return e.integType }

// SetTimeStep sets the fixed integration step in seconds.
func (e *Engine) SetTimeStep(dt float64) { e.dt = dt }

// TimeStep returns the fixed integration step in seconds.
func (e *Engine) TimeStep() float64 { return e.dt }

// SetTimeScale sets the simulated-to-real time ratio. Negative scales
// clamp to zero.
func (e *Engine) SetTimeScale(scale float64) { e.timeScale = math.Max(0, scale) }

// TimeScale returns the simulated-to-real time ratio.
func (e *Engine) TimeScale() float64 { return e.timeScale }

// SetMaxStepsPerFrame bounds the work a single Update may do.
func (e *Engine) SetMaxStepsPerFrame(n int) { e.maxSteps = n }

// MaxStepsPerFrame returns the per-Update step cap.
func (e *Engine) MaxStepsPerFrame() int { return e.maxSteps }

// State returns the current run state.
func (e *Engine) State() State { return e.state }

// SimTime returns the total simulated time in seconds.
func (e *Engine) SimTime() float64 { return e.simTime }

// StepCount returns the number of integration steps taken.
func (e *Engine) StepCount() uint64 { return e.stats.StepCount }

// LostCount returns the number of particles lost so far.
func (e *Engine) LostCount() int { return e.stats.LostParticleCount }

// Stats returns a snapshot of the simulation bookkeeping.
func (e *Engine) Stats() Stats { return e.stats }

// OnLoss registers a callback fired once per lost particle. A nil
// callback disables the notification.
func (e *Engine) OnLoss(fn LossFunc) { e.onLoss = fn }

// Start begins running. Starting from Stopped resets the simulation
// first, so any beam must be generated after Start.
func (e *Engine) Start() {
	if e.state == Stopped {
		e.Reset()
	}
	e.state = Running
}

// Stop halts the simulation. The next Start resets it.
func (e *Engine) Stop() { e.state = Stopped }

// Pause suspends a running simulation, keeping all state.
func (e *Engine) Pause() {
	if e.state == Running {
		e.state = Paused
	}
}

// Resume continues a paused simulation.
func (e *Engine) Resume() {
	if e.state == Paused {
		e.state = Running
	}
}

// Reset zeros the clock, statistics, and time bank and clears the
// ensemble. The lattice, integrator, and step configuration survive.
func (e *Engine) Reset() {
	e.stats = Stats{}
	e.bank = 0
	e.simTime = 0
	e.windowTime = 0
	e.windowSteps = 0
	e.system.Clear()
}

// InitDefaultBeam fills the ensemble with the standard 1000-particle
// 1 GeV proton beam.
func (e *Engine) InitDefaultBeam() {
	e.system.Generate(beam.DefaultParams())
}

// Update advances the simulation by one frame of real time. While the
// engine is Running, dtReal (scaled by the time scale) accrues in a
// bank that is drained one fixed step at a time, up to the per-frame
// cap; hitting the cap with more than one step still banked discards
// the residual so a slow frame cannot snowball. Statistics refresh on
// every Update.
func (e *Engine) Update(dtReal float64) {
	if e.state != Running {
		return
	}

	e.bank += dtReal * e.timeScale

	steps := 0
	for e.bank >= e.dt && steps < e.maxSteps {
		e.Step()
		e.bank -= e.dt
		steps++
	}
	if steps >= e.maxSteps && e.bank > e.dt {
		e.bank = 0
	}

	e.updateStats(dtReal)
}

// Step advances every active particle by one fixed time step, records
// detector crossings, and applies loss detection. All particles see
// the same field configuration and the same simulation time within a
// step.
func (e *Engine) Step() {
	dets := e.refreshDetectors()
	if len(dets) > 0 {
		e.savePositions()
	}

	for i := 0; i < e.system.Len(); i++ {
		p := e.system.Particle(i)
		if !p.Active {
			continue
		}
		e.integ.Step(p, e.fields, e.simTime, e.dt)
	}

	if len(dets) > 0 {
		e.recordCrossings(dets)
	}
	e.checkLosses()

	e.simTime += e.dt
	e.stats.SimulationTime = e.simTime
	e.stats.StepCount++
	e.windowSteps++
}

func (e *Engine) refreshDetectors() []*lattice.Component {
	e.dets = e.dets[:0]
	if e.lat == nil {
		return e.dets
	}
	for _, c := range e.lat.Components() {
		if c.Kind() == lattice.Detector {
			e.dets = append(e.dets, c)
		}
	}
	return e.dets
}

func (e *Engine) savePositions() {
	n := e.system.Len()
	if cap(e.prev) < n {
		e.prev = make([]r3.Vec, n)
	}
	e.prev = e.prev[:n]
	for i := 0; i < n; i++ {
		e.prev[i] = e.system.Particle(i).Pos
	}
}

// recordCrossings logs a hit on every detector whose entrance plane a
// particle crossed during the step, in the forward direction and
// within the aperture.
func (e *Engine) recordCrossings(dets []*lattice.Component) {
	t := e.simTime + e.dt
	for i := 0; i < e.system.Len(); i++ {
		p := e.system.Particle(i)
		if !p.Active {
			continue
		}
		for _, d := range dets {
			zPrev := d.ToLocal(e.prev[i]).Z
			local := d.ToLocal(p.Pos)
			if zPrev < 0 && local.Z >= 0 &&
				d.Aperture().Inside(local.X, local.Y) {
				d.RecordHit(lattice.Hit{
					Time:       t,
					Pos:        p.Pos,
					Mom:        p.Mom,
					ParticleID: p.ID,
				})
			}
		}
	}
}

// checkLosses deactivates particles that sit in no component's
// aperture and have strayed more than lossRadius from the beam axis.
func (e *Engine) checkLosses() {
	if e.lat == nil {
		return
	}
	comps := e.lat.Components()
	if len(comps) == 0 {
		return
	}

	for i := 0; i < e.system.Len(); i++ {
		p := e.system.Particle(i)
		if !p.Active {
			continue
		}

		inside := false
		for _, c := range comps {
			if c.InsideAperture(p.Pos) {
				inside = true
				break
			}
		}
		if inside {
			continue
		}

		if math.Sqrt(p.Pos.X*p.Pos.X+p.Pos.Y*p.Pos.Y) > lossRadius {
			p.Active = false
			e.stats.LostParticleCount++
			if e.onLoss != nil {
				e.onLoss(p)
			}
		}
	}
}

func (e *Engine) updateStats(frameTime float64) {
	e.windowTime += frameTime
	if e.windowTime >= 1.0 {
		e.stats.StepsPerSecond = float64(e.windowSteps) / e.windowTime
		e.windowSteps = 0
		e.windowTime = 0
	}

	e.stats.ParticleCount = e.system.ActiveCount()
	bs := e.system.Statistics()
	e.stats.AverageEnergy = bs.MeanEnergy
	e.stats.EnergySpread = bs.RMSEnergy
}
