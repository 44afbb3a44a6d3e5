package mesh

import (
	"testing"

	"github.com/nyxforge/supportgen/pkg/geometry"
	"github.com/nyxforge/supportgen/pkg/stl"
)

// tetrahedron returns a small closed, watertight, 2-manifold mesh so
// half-edge adjacency has well-defined answers everywhere.
func tetrahedron() *stl.Model {
	m := stl.NewModel("tetra")
	a := geometry.NewVector3(0, 0, 0)
	b := geometry.NewVector3(1, 0, 0)
	c := geometry.NewVector3(0, 1, 0)
	d := geometry.NewVector3(0, 0, 1)

	add := func(v1, v2, v3 geometry.Vector3) {
		t := geometry.NewTriangle(geometry.Vector3{}, v1, v2, v3)
		t.Normal = t.CalculateNormal()
		m.AddTriangle(t)
	}

	add(a, c, b)
	add(a, b, d)
	add(b, c, d)
	add(c, a, d)

	return m
}

func TestFromModelWeldsSharedVertices(t *testing.T) {
	mesh, err := FromModel(tetrahedron())
	if err != nil {
		t.Fatalf("FromModel returned error: %v", err)
	}

	if mesh.VertexCount() != 4 {
		t.Errorf("expected 4 welded vertices, got %d", mesh.VertexCount())
	}
	if mesh.FaceCount() != 4 {
		t.Errorf("expected 4 faces, got %d", mesh.FaceCount())
	}
	if mesh.EdgeCount() != 6 {
		t.Errorf("expected 6 edges, got %d", mesh.EdgeCount())
	}
}

func TestFromModelTwinsAreClosed(t *testing.T) {
	mesh, err := FromModel(tetrahedron())
	if err != nil {
		t.Fatalf("FromModel returned error: %v", err)
	}

	for i, he := range mesh.HalfEdges {
		if he.Twin == NoHalfEdge {
			t.Errorf("half-edge %d has no twin in a closed mesh", i)
			continue
		}
		twin := mesh.HalfEdges[he.Twin]
		if twin.From != he.To || twin.To != he.From {
			t.Errorf("half-edge %d and its twin do not share endpoints", i)
		}
	}
}

func TestAdjacentVerticesCount(t *testing.T) {
	mesh, err := FromModel(tetrahedron())
	if err != nil {
		t.Fatalf("FromModel returned error: %v", err)
	}

	for v := 0; v < mesh.VertexCount(); v++ {
		neighbors := mesh.AdjacentVertices(VertexID(v))
		if len(neighbors) != 3 {
			t.Errorf("vertex %d: expected 3 neighbors in a tetrahedron, got %d", v, len(neighbors))
		}
	}
}

func TestIncidentFacesCount(t *testing.T) {
	mesh, err := FromModel(tetrahedron())
	if err != nil {
		t.Fatalf("FromModel returned error: %v", err)
	}

	for v := 0; v < mesh.VertexCount(); v++ {
		faces := mesh.IncidentFaces(VertexID(v))
		if len(faces) != 3 {
			t.Errorf("vertex %d: expected 3 incident faces, got %d", v, len(faces))
		}
	}
}

func TestEmptyMeshIsEmpty(t *testing.T) {
	mesh, err := FromModel(stl.NewModel(""))
	if err != nil {
		t.Fatalf("FromModel returned error: %v", err)
	}
	if !mesh.IsEmpty() {
		t.Errorf("expected empty model to produce an empty mesh")
	}
}

func TestMinZTracksLowestVertex(t *testing.T) {
	m := stl.NewModel("plate")
	t1 := geometry.NewTriangle(geometry.NewVector3(0, 0, 1),
		geometry.NewVector3(0, 0, -2),
		geometry.NewVector3(1, 0, 5),
		geometry.NewVector3(0, 1, 5),
	)
	m.AddTriangle(t1)

	mesh, err := FromModel(m)
	if err != nil {
		t.Fatalf("FromModel returned error: %v", err)
	}
	if mesh.MinZ() != -2 {
		t.Errorf("expected MinZ -2, got %v", mesh.MinZ())
	}
}
