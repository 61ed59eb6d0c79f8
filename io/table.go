package io

import (
	"bufio"
	"fmt"
	"os"

	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/particle"
)

// WriteParticleTable writes one particle per line as seven whitespace
// separated columns: x y z px py pz active. Positions are in meters
// and momenta in kg m/s.
func WriteParticleTable(path string, ps []particle.Particle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# x y z px py pz active\n")
	for i := range ps {
		p := &ps[i]
		active := 0
		if p.Active {
			active = 1
		}
		fmt.Fprintf(w, "%g %g %g %g %g %g %d\n",
			p.Pos.X, p.Pos.Y, p.Pos.Z,
			p.Mom.X, p.Mom.Y, p.Mom.Z, active)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadParticleTable reads particles written by WriteParticleTable.
// The table only stores phase space, so the species supplies mass and
// charge; ids are assigned in file order.
func ReadParticleTable(
	path string, s particle.Species,
) ([]particle.Particle, error) {
	cols, err := table.ReadTable(path, []int{0, 1, 2, 3, 4, 5, 6}, nil)
	if err != nil {
		return nil, err
	}

	xs, ys, zs := cols[0], cols[1], cols[2]
	pxs, pys, pzs := cols[3], cols[4], cols[5]
	actives := cols[6]

	ps := make([]particle.Particle, len(xs))
	for i := range ps {
		ps[i] = particle.Particle{
			ID:     int64(i),
			Pos:    r3.Vec{X: xs[i], Y: ys[i], Z: zs[i]},
			Mom:    r3.Vec{X: pxs[i], Y: pys[i], Z: pzs[i]},
			Mass:   s.Mass,
			Charge: s.Charge,
			Active: actives[i] != 0,
		}
	}
	return ps, nil
}
