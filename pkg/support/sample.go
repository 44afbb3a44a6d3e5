package support

import (
	"sort"

	"github.com/nyxforge/supportgen/pkg/geometry"
	"github.com/nyxforge/supportgen/pkg/mesh"
)

// Sample expands a set of overhang Flags into a dense, deduplicated,
// top-to-bottom-ordered queue of MODEL-origin SupportPoints. This is the
// initial work queue the tree router consumes.
func Sample(m *mesh.Mesh, flags Flags, params Parameters, progress ProgressFunc) []SupportPoint {
	progress = progressOrNoop(progress)

	var points []SupportPoint

	vertexCount := len(flags.Vertices)
	i := 0
	for v := range flags.Vertices {
		points = append(points, sampleVertex(m, v))
		i++
		progress(StageSample, percentOf(i, vertexCount)/3)
	}

	edgeCount := len(flags.Edges)
	i = 0
	for e := range flags.Edges {
		points = append(points, sampleEdge(m, e, params.GridDensity)...)
		i++
		progress(StageSample, 33+percentOf(i, edgeCount)/3)
	}

	faceCount := len(flags.Faces)
	i = 0
	for f := range flags.Faces {
		points = append(points, sampleFace(m, f, params.GridDensity)...)
		i++
		progress(StageSample, 66+percentOf(i, faceCount)/3)
	}

	points = dedupeAndSort(points)
	progress(StageSample, 100)
	return points
}

func percentOf(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

// sampleVertex emits the single point rule for a flagged vertex.
func sampleVertex(m *mesh.Mesh, v mesh.VertexID) SupportPoint {
	return SupportPoint{
		Location: m.Position(v),
		Origin:   OriginModel,
		Normal:   m.Normal(v),
	}
}

// sampleEdge emits gridDensity points equally spaced between a flagged
// ridge edge's two endpoints, inclusive of both ends.
func sampleEdge(m *mesh.Mesh, e mesh.EdgeID, gridDensity int) []SupportPoint {
	va, vb := m.EdgeVertices(e)
	normal := m.EdgeNormal(e)
	locations := sampleSegment(m.Position(va), m.Position(vb), gridDensity)

	points := make([]SupportPoint, len(locations))
	for i, loc := range locations {
		points[i] = SupportPoint{Location: loc, Origin: OriginModel, Normal: normal}
	}
	return points
}

// sampleSegment returns count points at b + i*(a-b)/(count-1) for
// i in [0, count-1], so index 0 lands on b and the last index lands on a.
func sampleSegment(a, b geometry.Vector3, count int) []geometry.Vector3 {
	if count < 2 {
		count = 2
	}
	step := a.Sub(b).Mul(1.0 / float64(count-1))
	points := make([]geometry.Vector3, count)
	for i := 0; i < count; i++ {
		points[i] = b.Add(step.Mul(float64(i)))
	}
	return points
}

// sampleFace triangulates a flagged overhanging face into a triangular
// grid: successive rows run from edge BA to edge BC and shrink from
// gridDensity points along edge AC (opposite B) down to the single apex
// vertex B, each row sampled with the same
// equally-spaced edge rule used for ridge edges.
func sampleFace(m *mesh.Mesh, f mesh.FaceID, gridDensity int) []SupportPoint {
	verts := m.FaceVertices(f)
	a := m.Position(verts[0])
	b := m.Position(verts[1])
	c := m.Position(verts[2])
	normal := m.FaceNormal(f)

	v1 := a.Sub(b)
	v2 := c.Sub(b)

	var points []SupportPoint
	for i := gridDensity; i >= 2; i-- {
		delta := float64(i-1) / float64(gridDensity-1)
		rowStart := b.Add(v1.Mul(delta))
		rowEnd := b.Add(v2.Mul(delta))
		for _, loc := range sampleSegment(rowStart, rowEnd, i) {
			points = append(points, SupportPoint{Location: loc, Origin: OriginModel, Normal: normal})
		}
	}
	points = append(points, SupportPoint{Location: b, Origin: OriginModel, Normal: normal})
	return points
}

// dedupeAndSort orders points top-to-bottom (descending Z, then
// descending X+Y as a tiebreak, then descending X and Y so equal locations
// sit next to each other) and removes exact-location duplicates,
// establishing invariant I2 and giving the router a deterministic queue.
func dedupeAndSort(points []SupportPoint) []SupportPoint {
	sort.SliceStable(points, func(i, j int) bool {
		pi, pj := points[i].Location, points[j].Location
		if pi.Z != pj.Z {
			return pi.Z > pj.Z
		}
		if si, sj := pi.X+pi.Y, pj.X+pj.Y; si != sj {
			return si > sj
		}
		if pi.X != pj.X {
			return pi.X > pj.X
		}
		return pi.Y > pj.Y
	})

	deduped := points[:0]
	var last geometry.Vector3
	haveLast := false
	for _, p := range points {
		if haveLast && p.Location == last {
			continue
		}
		deduped = append(deduped, p)
		last = p.Location
		haveLast = true
	}
	return deduped
}
