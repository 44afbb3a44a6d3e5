package support

import (
	"math"
	"testing"

	"github.com/nyxforge/supportgen/pkg/geometry"
	"github.com/nyxforge/supportgen/pkg/mesh"
	"github.com/nyxforge/supportgen/pkg/stl"
)

// singleFaceMesh builds a mesh with one triangle whose downward normal
// makes the given angle (in radians) with straight down (-Z).
func singleFaceMesh(t *testing.T, tiltFromStraightDown float64) *mesh.Mesh {
	t.Helper()

	// Start pointing straight down, then tilt around the X axis.
	normal := geometry.NewVector3(0, 0, -1).RotateAround(geometry.NewVector3(1, 0, 0), tiltFromStraightDown)

	v1 := geometry.NewVector3(0, 0, 5)
	v2 := geometry.NewVector3(1, 0, 5)
	v3 := geometry.NewVector3(0, 1, 5)
	tri := geometry.NewTriangle(normal, v1, v2, v3)

	model := stl.NewModel("ramp")
	model.AddTriangle(tri)

	m, err := mesh.FromModel(model)
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}
	return m
}

func Test45DegreeRampNotFlagged(t *testing.T) {
	m := singleFaceMesh(t, 45*math.Pi/180)
	params := Parameters{AngleLimit: 60 * math.Pi / 180}

	flags := Classify(m, params)
	if len(flags.Faces) != 0 {
		t.Errorf("expected a 45-degree overhang under a 60-degree limit to be unflagged, got %d flagged faces", len(flags.Faces))
	}
}

func Test61DegreeRampFlagged(t *testing.T) {
	// The overhang angle is how far the normal points below horizontal,
	// i.e. 90 degrees minus its tilt from straight down.
	m := singleFaceMesh(t, (90-61)*math.Pi/180)
	params := Parameters{AngleLimit: 60 * math.Pi / 180}

	flags := Classify(m, params)
	if len(flags.Faces) != 1 {
		t.Errorf("expected a 61-degree overhang under a 60-degree limit to be flagged, got %d flagged faces", len(flags.Faces))
	}
}

func TestFlatRoofUndersideFlagged(t *testing.T) {
	// A horizontal downward-facing face is the maximal overhang case.
	m := singleFaceMesh(t, 0)
	params := DefaultParameters()

	flags := Classify(m, params)
	if len(flags.Faces) != 1 {
		t.Errorf("expected the horizontal underside face to be flagged")
	}
}

func TestClassifyEmptyMesh(t *testing.T) {
	m, err := mesh.FromModel(stl.NewModel(""))
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}

	flags := Classify(m, DefaultParameters())
	if len(flags.Faces) != 0 || len(flags.Edges) != 0 || len(flags.Vertices) != 0 {
		t.Errorf("expected an empty mesh to produce no flags")
	}
}

// pyramidWithDip builds a small fan of triangles around a single low
// vertex whose neighbors are all strictly higher, and whose normal points
// down: the plain local-minimum vertex case.
func pyramidWithDip(t *testing.T) *mesh.Mesh {
	t.Helper()
	model := stl.NewModel("dip")

	apex := geometry.NewVector3(0, 0, 0) // the low point
	ring := []geometry.Vector3{
		geometry.NewVector3(1, 0, 2),
		geometry.NewVector3(0, 1, 2),
		geometry.NewVector3(-1, 0, 2),
		geometry.NewVector3(0, -1, 2),
	}

	for i := range ring {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		// Wind so the normal points generally downward at the apex.
		tri := geometry.NewTriangle(geometry.Vector3{}, apex, b, a)
		tri.Normal = tri.CalculateNormal()
		model.AddTriangle(tri)
	}

	m, err := mesh.FromModel(model)
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}
	return m
}

func TestVertexRuleFlagsLocalMinimumWithDownwardNormal(t *testing.T) {
	m := pyramidWithDip(t)
	flags := Classify(m, DefaultParameters())

	if len(flags.Vertices) == 0 {
		t.Errorf("expected the dip's apex to be flagged as a vertex")
	}
}
