// Package mesh builds a read-only, half-edge-indexed view of a triangle
// mesh on top of the flat triangle soup produced by pkg/stl. It exists
// because pkg/stl's Model has no notion of shared vertices or adjacency,
// while the overhang classifier and tree router both need constant-time
// answers to "what touches this vertex/edge/face".
package mesh

import (
	"fmt"

	"github.com/nyxforge/supportgen/pkg/geometry"
	"github.com/nyxforge/supportgen/pkg/stl"
)

// VertexID indexes into Mesh.Vertices.
type VertexID int

// HalfEdgeID indexes into Mesh.HalfEdges. NoHalfEdge marks a boundary.
type HalfEdgeID int

// FaceID indexes into Mesh.Faces.
type FaceID int

// EdgeID indexes into Mesh.Edges.
type EdgeID int

// NoHalfEdge is the sentinel value for a half-edge with no twin (a
// boundary edge of a mesh that isn't watertight).
const NoHalfEdge HalfEdgeID = -1

// Vertex is a welded mesh vertex: its position plus one outgoing half-edge
// used as a seeding point for adjacency walks.
type Vertex struct {
	Position geometry.Vector3
	Normal   geometry.Vector3 // accumulated, see accumulateVertexNormals
	Leaving  HalfEdgeID
}

// HalfEdge runs From -> To, bordering Face on its left. Twin is the
// opposing half-edge of the same undirected edge, or NoHalfEdge on a
// boundary. Next and Prev walk around Face.
type HalfEdge struct {
	From, To VertexID
	Twin     HalfEdgeID
	Next     HalfEdgeID
	Prev     HalfEdgeID
	Face     FaceID
	Edge     EdgeID
}

// Face is a triangle referencing three consecutive half-edges.
type Face struct {
	Half   [3]HalfEdgeID
	Vertex [3]VertexID
	Normal geometry.Vector3
}

// Edge groups the (at most two) half-edges that share an undirected pair
// of vertices.
type Edge struct {
	Vertices [2]VertexID
	Half     [2]HalfEdgeID // Half[1] == NoHalfEdge on a boundary edge
}

// Mesh is the read-only, half-edge-indexed triangle mesh consumed by the
// overhang classifier, sampler, and router. It is built once from a
// stl.Model and never mutated afterward.
type Mesh struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Faces     []Face
	Edges     []Edge
}

// edgeKey canonically orders a pair of vertex indices so that the two
// half-edges of one undirected edge hash to the same key regardless of
// which triangle visits it first or in which winding order.
type edgeKey struct{ a, b VertexID }

func makeEdgeKey(a, b VertexID) edgeKey {
	if a <= b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

// FromModel welds the triangle soup in m into an indexed half-edge mesh.
// Vertices at identical positions are merged, mirroring the deduplication
// technique used by hand-rolled STL readers that build a vertex map keyed
// by position while streaming triangles.
func FromModel(m *stl.Model) (*Mesh, error) {
	if m == nil || len(m.Triangles) == 0 {
		return &Mesh{}, nil
	}

	mesh := &Mesh{}
	vertexIndex := make(map[geometry.Vector3]VertexID, len(m.Triangles)*3)
	edgeIndex := make(map[edgeKey]EdgeID, len(m.Triangles)*3)

	weld := func(p geometry.Vector3) VertexID {
		if id, ok := vertexIndex[p]; ok {
			return id
		}
		id := VertexID(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, Vertex{Position: p, Leaving: NoHalfEdge})
		vertexIndex[p] = id
		return id
	}

	for _, tri := range m.Triangles {
		if tri.IsDegenerate() {
			continue // DegenerateFace: skipped, never surfaced as an error
		}

		vids := [3]VertexID{weld(tri.V1), weld(tri.V2), weld(tri.V3)}
		normal := tri.Normal
		if normal.IsZero() {
			normal = tri.CalculateNormal()
		}

		faceID := FaceID(len(mesh.Faces))
		var halfIDs [3]HalfEdgeID

		for i := 0; i < 3; i++ {
			from, to := vids[i], vids[(i+1)%3]
			heID := HalfEdgeID(len(mesh.HalfEdges))
			halfIDs[i] = heID

			key := makeEdgeKey(from, to)
			edgeID, exists := edgeIndex[key]
			if !exists {
				edgeID = EdgeID(len(mesh.Edges))
				mesh.Edges = append(mesh.Edges, Edge{Vertices: [2]VertexID{from, to}, Half: [2]HalfEdgeID{NoHalfEdge, NoHalfEdge}})
				edgeIndex[key] = edgeID
			}

			mesh.HalfEdges = append(mesh.HalfEdges, HalfEdge{
				From: from,
				To:   to,
				Face: faceID,
				Edge: edgeID,
				Twin: NoHalfEdge,
			})

			edge := &mesh.Edges[edgeID]
			if edge.Half[0] == NoHalfEdge {
				edge.Half[0] = heID
			} else if edge.Half[1] == NoHalfEdge {
				edge.Half[1] = heID
				other := edge.Half[0]
				mesh.HalfEdges[other].Twin = heID
				mesh.HalfEdges[heID].Twin = other
			}
			// A third half-edge on the same undirected edge means the input
			// isn't 2-manifold; we keep the first two twins and leave the
			// rest boundary-like rather than fail the whole load.

			if mesh.Vertices[from].Leaving == NoHalfEdge {
				mesh.Vertices[from].Leaving = heID
			}
		}

		for i := 0; i < 3; i++ {
			mesh.HalfEdges[halfIDs[i]].Next = halfIDs[(i+1)%3]
			mesh.HalfEdges[halfIDs[i]].Prev = halfIDs[(i+2)%3]
		}

		mesh.Faces = append(mesh.Faces, Face{Half: halfIDs, Vertex: vids, Normal: normal})
	}

	mesh.accumulateVertexNormals()
	return mesh, nil
}

// Load parses an STL file and builds its half-edge mesh in one step.
func Load(path string) (*Mesh, error) {
	model, err := stl.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: failed to parse %s: %w", path, err)
	}
	return FromModel(model)
}

// IsEmpty reports whether the mesh has no faces (the EmptyMesh case: not
// an error, downstream stages simply produce nothing).
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// VertexCount, EdgeCount, and FaceCount report the size of the mesh.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }
func (m *Mesh) EdgeCount() int   { return len(m.Edges) }
func (m *Mesh) FaceCount() int   { return len(m.Faces) }

// Position returns the world position of a vertex.
func (m *Mesh) Position(v VertexID) geometry.Vector3 {
	return m.Vertices[v].Position
}

// Normal returns the accumulated vertex normal, or +Z if it is
// degenerate (NormalUndefined: treated as +Z for routing decisions).
func (m *Mesh) Normal(v VertexID) geometry.Vector3 {
	n := m.Vertices[v].Normal
	if n.IsZero() {
		return geometry.NewVector3(0, 0, 1)
	}
	return n
}

// FaceNormal returns the stored (or recomputed) normal of a face.
func (m *Mesh) FaceNormal(f FaceID) geometry.Vector3 {
	return m.Faces[f].Normal
}

// FaceVertices returns the three vertex indices of a face, in winding order.
func (m *Mesh) FaceVertices(f FaceID) [3]VertexID {
	return m.Faces[f].Vertex
}

// FaceTriangle returns the face as a geometry.Triangle in world space.
func (m *Mesh) FaceTriangle(f FaceID) geometry.Triangle {
	face := m.Faces[f]
	return geometry.NewTriangle(face.Normal,
		m.Vertices[face.Vertex[0]].Position,
		m.Vertices[face.Vertex[1]].Position,
		m.Vertices[face.Vertex[2]].Position,
	)
}

// EdgeVertices returns the two endpoints of an edge.
func (m *Mesh) EdgeVertices(e EdgeID) (VertexID, VertexID) {
	edge := m.Edges[e]
	return edge.Vertices[0], edge.Vertices[1]
}

// EdgeHalfEdges returns the (up to two) half-edges bordering an edge.
func (m *Mesh) EdgeHalfEdges(e EdgeID) (HalfEdgeID, HalfEdgeID) {
	edge := m.Edges[e]
	return edge.Half[0], edge.Half[1]
}

// EdgeNormal returns the average of the normals of the faces bordering an
// edge, matching the sampler's rule for edge-sampled points.
func (m *Mesh) EdgeNormal(e EdgeID) geometry.Vector3 {
	h0, h1 := m.EdgeHalfEdges(e)
	var sum geometry.Vector3
	if h0 != NoHalfEdge {
		sum = sum.Add(m.Faces[m.HalfEdges[h0].Face].Normal)
	}
	if h1 != NoHalfEdge {
		sum = sum.Add(m.Faces[m.HalfEdges[h1].Face].Normal)
	}
	return sum.Normalize()
}

// AdjacentVertices returns the vertices connected to v by a single edge,
// found by walking the ring of half-edges leaving (and, via twins,
// entering) v.
func (m *Mesh) AdjacentVertices(v VertexID) []VertexID {
	start := m.Vertices[v].Leaving
	if start == NoHalfEdge {
		return nil
	}

	seen := make(map[VertexID]bool)
	var neighbors []VertexID
	add := func(id VertexID) {
		if !seen[id] {
			seen[id] = true
			neighbors = append(neighbors, id)
		}
	}

	he := start
	for {
		edge := m.HalfEdges[he]
		add(edge.To)

		// Step to the next outgoing half-edge sharing v: go to the
		// previous half-edge in the current face (which ends at v) and
		// cross its twin to reach the next face's outgoing edge.
		prevHE := m.HalfEdges[edge.Prev]
		if prevHE.Twin == NoHalfEdge {
			// Hit a boundary walking forward: the boundary half-edge ends
			// at v, and its start is a neighbor no outgoing edge reaches.
			add(prevHE.From)
			break
		}
		he = prevHE.Twin
		if he == start {
			return neighbors
		}
	}

	// Boundary vertex: the forward walk above stopped early, so also walk
	// backward from the start half-edge to pick up the remaining fan.
	he = start
	for {
		twin := m.HalfEdges[he].Twin
		if twin == NoHalfEdge {
			break
		}
		next := m.HalfEdges[twin].Next
		add(m.HalfEdges[next].To)
		he = next
		if he == start {
			break
		}
	}

	return neighbors
}

// IncidentFaces returns the faces touching v.
func (m *Mesh) IncidentFaces(v VertexID) []FaceID {
	start := m.Vertices[v].Leaving
	if start == NoHalfEdge {
		return nil
	}

	seen := make(map[FaceID]bool)
	var faces []FaceID
	he := start
	for {
		f := m.HalfEdges[he].Face
		if !seen[f] {
			seen[f] = true
			faces = append(faces, f)
		}
		prevHE := m.HalfEdges[m.HalfEdges[he].Prev]
		if prevHE.Twin == NoHalfEdge {
			break
		}
		he = prevHE.Twin
		if he == start {
			return faces
		}
	}

	// Boundary vertex: walk backward from the start half-edge to pick up
	// the faces on its other side.
	he = start
	for {
		twin := m.HalfEdges[he].Twin
		if twin == NoHalfEdge {
			break
		}
		he = m.HalfEdges[twin].Next
		if he == start {
			break
		}
		if f := m.HalfEdges[he].Face; !seen[f] {
			seen[f] = true
			faces = append(faces, f)
		}
	}
	return faces
}

// EdgeBetween returns the Edge connecting a and b, if one exists. Used by
// the overhang classifier to turn a ridge-tie between two vertices into a
// single deduplicated EdgeID rather than an unordered pair. This is a
// linear scan; ridge ties are rare (see the classifier's doc comment), so
// it is never called often enough to matter.
func (m *Mesh) EdgeBetween(a, b VertexID) (EdgeID, bool) {
	for i, e := range m.Edges {
		if (e.Vertices[0] == a && e.Vertices[1] == b) || (e.Vertices[0] == b && e.Vertices[1] == a) {
			return EdgeID(i), true
		}
	}
	return 0, false
}

// BoundingBox returns the axis-aligned bounding box of every vertex.
func (m *Mesh) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, v := range m.Vertices {
		bbox.Extend(v.Position)
	}
	return bbox
}

// MinZ returns the Z coordinate of the build plate: the lowest point of
// the mesh, since the build direction is fixed at +Z.
func (m *Mesh) MinZ() float64 {
	minZ := 0.0
	if len(m.Vertices) > 0 {
		minZ = m.Vertices[0].Position.Z
	}
	for _, v := range m.Vertices {
		if v.Position.Z < minZ {
			minZ = v.Position.Z
		}
	}
	return minZ
}

// accumulateVertexNormals area-weights each face's normal into its three
// vertices, then normalizes. Larger incident triangles contribute more to
// the vertex normal than slivers, which is a closer approximation to the
// true surface normal than an unweighted average.
func (m *Mesh) accumulateVertexNormals() {
	for _, face := range m.Faces {
		tri := geometry.NewTriangle(face.Normal,
			m.Vertices[face.Vertex[0]].Position,
			m.Vertices[face.Vertex[1]].Position,
			m.Vertices[face.Vertex[2]].Position,
		)
		weighted := face.Normal.Mul(tri.Area())
		for _, vid := range face.Vertex {
			m.Vertices[vid].Normal = m.Vertices[vid].Normal.Add(weighted)
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}
