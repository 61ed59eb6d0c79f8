package geom

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

const testEps = 1e-12

func randVec(rng *rand.Rand, width float64) r3.Vec {
	return r3.Vec{
		X: width * (2*rng.Float64() - 1),
		Y: width * (2*rng.Float64() - 1),
		Z: width * (2*rng.Float64() - 1),
	}
}

func vecNear(a, b r3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) < eps &&
		math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Z-b.Z) < eps
}

func TestBoxContains(t *testing.T) {
	b := NewBox(r3.Vec{X: -1, Y: -2, Z: -3}, r3.Vec{X: 1, Y: 2, Z: 3})

	table := []struct {
		pt r3.Vec
		in bool
	}{
		{r3.Vec{}, true},
		{r3.Vec{X: 1, Y: 2, Z: 3}, true},
		{r3.Vec{X: -1, Y: -2, Z: -3}, true},
		{r3.Vec{X: 1.0001}, false},
		{r3.Vec{Y: -2.0001}, false},
		{r3.Vec{Z: 3.0001}, false},
	}

	for i, line := range table {
		if b.Contains(line.pt) != line.in {
			t.Errorf("%d) Contains(%v) != %v", i, line.pt, line.in)
		}
	}
}

func TestInfiniteBox(t *testing.T) {
	b := Infinite()
	if !b.IsInfinite() {
		t.Errorf("Infinite() does not report itself infinite.")
	}

	rng := rand.New(rand.NewSource(0))
	for i := 0; i < 100; i++ {
		pt := randVec(rng, 1e10)
		if !b.Contains(pt) {
			t.Errorf("Infinite box does not contain %v", pt)
		}
	}

	fin := NewBox(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	if fin.IsInfinite() {
		t.Errorf("Finite box reports itself infinite.")
	}
}

func TestTransformZeroValue(t *testing.T) {
	tr := Transform{}
	pt := r3.Vec{X: 1, Y: 2, Z: 3}
	if tr.ToLocal(pt) != pt || tr.ToGlobal(pt) != pt {
		t.Errorf("Zero transform moved %v.", pt)
	}
}

func TestTransformTranslation(t *testing.T) {
	tr := NewTransform(r3.Vec{X: 0, Y: 0, Z: 5})
	local := tr.ToLocal(r3.Vec{X: 0.01, Y: -0.02, Z: 5.5})
	want := r3.Vec{X: 0.01, Y: -0.02, Z: 0.5}
	if !vecNear(local, want, testEps) {
		t.Errorf("ToLocal = %v, want %v", local, want)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		tr := NewTransform(randVec(rng, 10))
		tr.SetRotation(2*math.Pi*rng.Float64(), r3.Unit(randVec(rng, 1)))

		pt := randVec(rng, 10)
		back := tr.ToGlobal(tr.ToLocal(pt))
		if !vecNear(back, pt, 1e-9) {
			t.Errorf("%d) round trip %v -> %v", i, pt, back)
		}
	}
}

func TestTransformRotation(t *testing.T) {
	// Rotate the frame a quarter turn about z: the global point +x sits
	// on the local -y axis.
	tr := Transform{}
	tr.SetRotation(math.Pi/2, r3.Vec{Z: 1})

	local := tr.ToLocal(r3.Vec{X: 1})
	if !vecNear(local, r3.Vec{Y: -1}, 1e-12) {
		t.Errorf("ToLocal(+x) = %v, want (0, -1, 0)", local)
	}
}

func BenchmarkToLocal(b *testing.B) {
	rng := rand.New(rand.NewSource(0))
	tr := NewTransform(randVec(rng, 10))
	tr.SetRotation(0.3, r3.Vec{Z: 1})
	pt := randVec(rng, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pt = tr.ToLocal(pt)
	}
}
