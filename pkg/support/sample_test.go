package support

import (
	"math"
	"testing"

	"github.com/nyxforge/supportgen/pkg/geometry"
	"github.com/nyxforge/supportgen/pkg/mesh"
	"github.com/nyxforge/supportgen/pkg/stl"
)

func TestSampleFaceProducesTriangularGridCount(t *testing.T) {
	m := singleFaceMesh(t, 61*math.Pi/180)
	gridDensity := 4

	points := sampleFace(m, mesh.FaceID(0), gridDensity)

	// A triangular grid of side gridDensity holds gridDensity*(gridDensity+1)/2 points.
	want := gridDensity * (gridDensity + 1) / 2
	if len(points) != want {
		t.Errorf("sampleFace(gridDensity=%d) = %d points, want %d", gridDensity, len(points), want)
	}
}

func TestSampleEndToEndOnRamp(t *testing.T) {
	// A 61-degree overhang: the normal is tilted 29 degrees from straight down.
	m := singleFaceMesh(t, (90-61)*math.Pi/180)
	params := Parameters{AngleLimit: 60 * math.Pi / 180, GridDensity: 4}

	flags := Classify(m, params)
	points := Sample(m, flags, params, nil)

	want := params.GridDensity * (params.GridDensity + 1) / 2
	if len(points) != want {
		t.Errorf("Sample() = %d points, want %d", len(points), want)
	}
	for _, p := range points {
		if p.Origin != OriginModel {
			t.Errorf("expected sampled points to carry OriginModel, got %v", p.Origin)
		}
	}
}

func TestSampleSegmentEndpointsInclusive(t *testing.T) {
	a := geometry.NewVector3(0, 0, 10)
	b := geometry.NewVector3(0, 0, 0)

	points := sampleSegment(a, b, 3)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0] != b {
		t.Errorf("first point = %v, want %v (b)", points[0], b)
	}
	if points[len(points)-1] != a {
		t.Errorf("last point = %v, want %v (a)", points[len(points)-1], a)
	}
}

func TestDedupeAndSortOrdersDescendingZThenXY(t *testing.T) {
	points := []SupportPoint{
		{Location: geometry.NewVector3(0, 0, 1)},
		{Location: geometry.NewVector3(5, 5, 3)},
		{Location: geometry.NewVector3(1, 1, 3)},
		{Location: geometry.NewVector3(0, 0, 1)}, // duplicate of the first
	}

	result := dedupeAndSort(points)
	if len(result) != 3 {
		t.Fatalf("expected duplicates removed, got %d points", len(result))
	}
	if result[0].Location.Z != 3 || result[0].Location.X != 5 {
		t.Errorf("expected the higher, more positive point first, got %v", result[0].Location)
	}
	if result[2].Location.Z != 1 {
		t.Errorf("expected the lowest point last, got %v", result[2].Location)
	}
}

func TestSampleVertexAndEdgeCarryModelOrigin(t *testing.T) {
	m := pyramidWithDip(t)
	flags := Classify(m, DefaultParameters())
	points := Sample(m, flags, DefaultParameters(), nil)

	if len(points) == 0 {
		t.Fatalf("expected at least one sampled point from the dip")
	}
	for _, p := range points {
		if p.Origin != OriginModel {
			t.Errorf("expected OriginModel, got %v", p.Origin)
		}
	}
}

func TestSampleEmptyFlagsProducesNoPoints(t *testing.T) {
	m, err := mesh.FromModel(stl.NewModel(""))
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}

	points := Sample(m, Classify(m, DefaultParameters()), DefaultParameters(), nil)
	if len(points) != 0 {
		t.Errorf("expected no points from an empty mesh, got %d", len(points))
	}
}
