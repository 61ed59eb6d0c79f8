package io

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/particle"
)

/*
The binary format used for phase-space dumps is as follows:
    |-- 1 --||-- 2 --||-- ... 3 ... --||-- ... 4 ... --| ...

    1 - (int32) Magic number identifying gotrack dump files.
    2 - (int32) Size of a DumpHeader struct. Should be checked for
        consistency.
    3 - (DumpHeader) Header describing the run the snapshots came from.
    4 - One block per snapshot: a (float64) simulation time followed by
        Count records of (int64 id, [3]float64 position, [3]float64
        momentum, int64 active flag).

All values are little-endian.
*/

// DumpMagic is the first four bytes of every dump file.
const DumpMagic int32 = 0x6b727467

// DumpVersion is the format version written by this package.
const DumpVersion int64 = 1

var dumpOrder = binary.LittleEndian

// DumpHeader describes the run a sequence of snapshots came from. The
// ensemble is single-species, so one mass and charge cover every
// record.
type DumpHeader struct {
	Version   int64
	Count     int64 // particles per snapshot
	Snapshots int64
	TimeStep  float64 // integration step (s)
	PRef      float64 // reference momentum (kg m/s)
	Mass      float64 // particle mass (kg)
	Charge    float64 // particle charge (C)
}

// Snapshot is the full phase space at one instant.
type Snapshot struct {
	Time      float64
	Particles []particle.Particle
}

type dumpRecord struct {
	ID     int64
	Pos    [3]float64
	Mom    [3]float64
	Active int64
}

func packRecord(p *particle.Particle) dumpRecord {
	rec := dumpRecord{
		ID:  p.ID,
		Pos: [3]float64{p.Pos.X, p.Pos.Y, p.Pos.Z},
		Mom: [3]float64{p.Mom.X, p.Mom.Y, p.Mom.Z},
	}
	if p.Active {
		rec.Active = 1
	}
	return rec
}

func (rec *dumpRecord) unpack(mass, charge float64) particle.Particle {
	return particle.Particle{
		ID:     rec.ID,
		Pos:    r3.Vec{X: rec.Pos[0], Y: rec.Pos[1], Z: rec.Pos[2]},
		Mom:    r3.Vec{X: rec.Mom[0], Y: rec.Mom[1], Z: rec.Mom[2]},
		Mass:   mass,
		Charge: charge,
		Active: rec.Active != 0,
	}
}

// DumpWriter appends snapshots to a dump file one at a time. Close
// must be called to finalize the snapshot count in the header.
type DumpWriter struct {
	f   *os.File
	h   DumpHeader
	buf []dumpRecord
}

// NewDumpWriter creates a dump file and writes its header. The
// header's Snapshots field is managed by the writer; its Version is
// filled in when zero.
func NewDumpWriter(path string, h *DumpHeader) (*DumpWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := &DumpWriter{f: f, h: *h}
	w.h.Snapshots = 0
	if w.h.Version == 0 {
		w.h.Version = DumpVersion
	}

	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *DumpWriter) writeHeader() error {
	if err := binary.Write(w.f, dumpOrder, DumpMagic); err != nil {
		return err
	}
	size := int32(unsafe.Sizeof(DumpHeader{}))
	if err := binary.Write(w.f, dumpOrder, size); err != nil {
		return err
	}
	return binary.Write(w.f, dumpOrder, &w.h)
}

// Append writes one snapshot.
func (w *DumpWriter) Append(t float64, ps []particle.Particle) error {
	if int64(len(ps)) != w.h.Count {
		return fmt.Errorf(
			"Snapshot has %d particles, but the dump header says %d.",
			len(ps), w.h.Count,
		)
	}

	if err := binary.Write(w.f, dumpOrder, t); err != nil {
		return err
	}

	if cap(w.buf) < len(ps) {
		w.buf = make([]dumpRecord, len(ps))
	}
	w.buf = w.buf[:len(ps)]
	for i := range ps {
		w.buf[i] = packRecord(&ps[i])
	}

	if err := binary.Write(w.f, dumpOrder, w.buf); err != nil {
		return err
	}
	w.h.Snapshots++
	return nil
}

// Close rewrites the header with the final snapshot count and closes
// the file.
func (w *DumpWriter) Close() error {
	if _, err := w.f.Seek(0, 0); err != nil {
		w.f.Close()
		return err
	}
	if err := w.writeHeader(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// WriteDump writes a whole sequence of snapshots at once.
func WriteDump(path string, h *DumpHeader, snaps []Snapshot) error {
	w, err := NewDumpWriter(path, h)
	if err != nil {
		return err
	}
	for i := range snaps {
		if err := w.Append(snaps[i].Time, snaps[i].Particles); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func readDumpHeader(f *os.File, path string) (*DumpHeader, error) {
	var magic int32
	if err := binary.Read(f, dumpOrder, &magic); err != nil {
		return nil, err
	}
	if magic != DumpMagic {
		return nil, fmt.Errorf("File %s is not a gotrack dump.", path)
	}

	var size int32
	if err := binary.Read(f, dumpOrder, &size); err != nil {
		return nil, err
	}
	if size != int32(unsafe.Sizeof(DumpHeader{})) {
		return nil, fmt.Errorf(
			"Expected io.DumpHeader size of %d, found %d.",
			unsafe.Sizeof(DumpHeader{}), size,
		)
	}

	h := &DumpHeader{}
	if err := binary.Read(f, dumpOrder, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ReadDumpHeader reads only the header of a dump file.
func ReadDumpHeader(path string) (*DumpHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readDumpHeader(f, path)
}

// ReadDump reads a whole dump file back into memory.
func ReadDump(path string) (*DumpHeader, []Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	h, err := readDumpHeader(f, path)
	if err != nil {
		return nil, nil, err
	}

	snaps := make([]Snapshot, 0, h.Snapshots)
	recs := make([]dumpRecord, h.Count)
	for i := int64(0); i < h.Snapshots; i++ {
		var t float64
		if err := binary.Read(f, dumpOrder, &t); err != nil {
			return nil, nil, err
		}
		if err := binary.Read(f, dumpOrder, recs); err != nil {
			return nil, nil, err
		}

		ps := make([]particle.Particle, h.Count)
		for j := range recs {
			ps[j] = recs[j].unpack(h.Mass, h.Charge)
		}
		snaps = append(snaps, Snapshot{Time: t, Particles: ps})
	}
	return h, snaps, nil
}
