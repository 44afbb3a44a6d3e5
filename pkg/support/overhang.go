package support

import (
	"math"

	"github.com/nyxforge/supportgen/pkg/geometry"
	"github.com/nyxforge/supportgen/pkg/mesh"
)

// zTieEpsilon is the tolerance used for the vertex classifier's Z-equality
// test. The original viewer this pipeline is modeled on used exact float
// equality, which almost never fires on a real, non-axis-aligned mesh; an
// epsilon-tolerant test is the recommended fix (see the Z-tie note in
// DESIGN.md) and is cheap enough to always apply.
const zTieEpsilon = 1e-9

var buildUp = geometry.NewVector3(0, 0, 1)

// Flags is the result of classification: three disjoint sets of mesh
// elements that need support. Rebuilt from scratch on every parameter
// change; there is no incremental update.
type Flags struct {
	Faces    map[mesh.FaceID]bool
	Edges    map[mesh.EdgeID]bool
	Vertices map[mesh.VertexID]bool
}

func newFlags() Flags {
	return Flags{
		Faces:    make(map[mesh.FaceID]bool),
		Edges:    make(map[mesh.EdgeID]bool),
		Vertices: make(map[mesh.VertexID]bool),
	}
}

// Classify partitions m into faces, edges, and vertices that cannot
// self-support at the given angle limit. It is a pure function of the
// mesh and the parameters, and cannot fail: an empty mesh simply yields
// empty flags.
func Classify(m *mesh.Mesh, params Parameters) Flags {
	flags := newFlags()
	if m.IsEmpty() {
		return flags
	}

	for f := 0; f < m.FaceCount(); f++ {
		if isOverhangingFace(m.FaceNormal(mesh.FaceID(f)), params.AngleLimit) {
			flags.Faces[mesh.FaceID(f)] = true
		}
	}

	for v := 0; v < m.VertexCount(); v++ {
		vid := mesh.VertexID(v)
		isVertex, ridgeWith, isRidge := classifyVertex(m, vid)
		if isVertex {
			flags.Vertices[vid] = true
		} else if isRidge {
			if edgeID, ok := m.EdgeBetween(vid, ridgeWith); ok {
				flags.Edges[edgeID] = true
			}
		}
	}

	return flags
}

// isOverhangingFace implements the face rule: a face belongs to
// FacesToSupport iff its normal points at least angleLimit below
// horizontal, i.e. the angle between the face normal and +Z is at least
// pi/2 + angleLimit.
func isOverhangingFace(normal geometry.Vector3, angleLimit float64) bool {
	angle := normal.AngleTo(buildUp)
	return angle-math.Pi/2 >= angleLimit
}

// classifyVertex applies the vertex/edge rule for a single vertex v.
//
// Collect the Z coordinates of every neighbor. If any neighbor is
// strictly lower than v, v cannot be a local Z-minimum and nothing is
// emitted. Otherwise count neighbors tied with v's own Z within
// zTieEpsilon:
//
//   - zero ties: v is a plain local minimum. It is emitted as a vertex
//     if its normal points downward (normal.Z < 0).
//   - exactly one tie: the pair (v, tiedNeighbor) is a horizontal ridge;
//     the caller is responsible for deduplicating it against the mirror
//     detection from the neighbor's own perspective, which EdgeBetween's
//     shared EdgeID naturally gives us.
//   - two or more ties: ambiguous, nothing is emitted.
func classifyVertex(m *mesh.Mesh, v mesh.VertexID) (isVertex bool, ridgeNeighbor mesh.VertexID, isRidge bool) {
	neighbors := m.AdjacentVertices(v)
	if len(neighbors) == 0 {
		return false, 0, false
	}

	vz := m.Position(v).Z
	tieCount := 0
	var tieNeighbor mesh.VertexID

	for _, n := range neighbors {
		nz := m.Position(n).Z
		if nz < vz-zTieEpsilon {
			return false, 0, false
		}
		if math.Abs(nz-vz) <= zTieEpsilon {
			tieCount++
			tieNeighbor = n
		}
	}

	switch tieCount {
	case 0:
		if m.Normal(v).Z < 0 {
			return true, 0, false
		}
		return false, 0, false
	case 1:
		return false, tieNeighbor, true
	default:
		return false, 0, false
	}
}
