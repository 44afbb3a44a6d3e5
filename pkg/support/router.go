package support

import (
	"math"
	"sort"

	"github.com/nyxforge/supportgen/pkg/geometry"
	"github.com/nyxforge/supportgen/pkg/mesh"
)

// microLiftClearance is the minimum height above the plate a MODEL-origin
// point must clear before it is worth routing sideways instead of straight
// down.
const microLiftClearance = 1.0

// candidateEpsilon treats a termination candidate distance as "degenerate
// zero" for the purposes of the winner-selection tie-breaking rules.
const candidateEpsilon = 1e-9

// winner names which of the three termination candidates a COMMON point
// resolves to on a given routing step.
type winner int

const (
	winCB winner = iota
	winCM
	winCP
)

// pointQueue is the router's working set: a slice kept sorted by
// descending Z, then descending X+Y, re-sorted after every mutation so the
// front element is always the highest remaining point.
type pointQueue struct {
	items []SupportPoint
}

func newPointQueue(seeds []SupportPoint) *pointQueue {
	items := make([]SupportPoint, len(seeds))
	copy(items, seeds)
	q := &pointQueue{items: items}
	q.resort()
	return q
}

func (q *pointQueue) resort() {
	sort.SliceStable(q.items, func(i, j int) bool {
		a, b := q.items[i].Location, q.items[j].Location
		if a.Z != b.Z {
			return a.Z > b.Z
		}
		return (a.X + a.Y) > (b.X + b.Y)
	})
}

func (q *pointQueue) len() int { return len(q.items) }

func (q *pointQueue) popFront() (SupportPoint, bool) {
	if len(q.items) == 0 {
		return SupportPoint{}, false
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p, true
}

func (q *pointQueue) push(p SupportPoint) {
	q.items = append(q.items, p)
	q.resort()
}

func (q *pointQueue) remove(p SupportPoint) {
	for i, item := range q.items {
		if item.Equal(p) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Route consumes the sorted queue of MODEL-origin SupportPoints produced by
// Sample and returns the forest of TreePoints connecting every seed down to
// the plate or the model surface, inserting new COMMON junctions wherever
// branches merge or a point needs lifting for clearance.
func Route(m *mesh.Mesh, seeds []SupportPoint, params Parameters, progress ProgressFunc) []TreePoint {
	progress = progressOrNoop(progress)
	if len(seeds) == 0 {
		return nil
	}

	zMin := m.MinZ()
	q := newPointQueue(seeds)
	var tree []TreePoint

	total := q.len()
	processed := 0
	// Lifted and junction points re-enter the queue, so processed can
	// outgrow total; hold at 99 until the final 100.
	report := func() {
		pct := percentOf(processed, total)
		if pct > 99 {
			pct = 99
		}
		progress(StageRoute, pct)
	}

	for q.len() > 0 {
		p, ok := q.popFront()
		if !ok {
			break
		}

		if p.Location.Z <= zMin {
			processed++
			report()
			continue
		}

		if p.Origin == OriginModel {
			tree = append(tree, routeModelPoint(p, zMin, q)...)
		} else {
			tree = append(tree, routeCommonPoint(m, p, q, zMin, params)...)
		}

		processed++
		report()
	}

	progress(StageRoute, 100)
	return tree
}

// routeModelPoint applies the MICRO-LIFT rule: a MODEL point close enough
// to the plate drops straight down to it, otherwise it is nudged outward
// along its own normal and re-enters the queue as a COMMON point.
func routeModelPoint(p SupportPoint, zMin float64, q *pointQueue) []TreePoint {
	if p.Location.Z-zMin < microLiftClearance {
		plate := SupportPoint{
			Location: geometry.NewVector3(p.Location.X, p.Location.Y, zMin),
			Origin:   OriginPlate,
			Normal:   buildUp,
		}
		return []TreePoint{{Upper: p, Lower: plate}}
	}

	normal := p.Normal
	if normal.IsZero() {
		normal = buildUp
	}
	lifted := SupportPoint{
		Location: p.Location.Add(normal.Normalize()),
		Origin:   OriginCommon,
		Normal:   normal,
	}
	q.push(lifted)
	return []TreePoint{{Upper: p, Lower: lifted}}
}

// routeCommonPoint dispatches a COMMON point to the nearest of its three
// candidate termini, per the winner-selection rule: a zero-distance
// candidate is treated as unavailable, ties favour cp over cm over cb.
func routeCommonPoint(m *mesh.Mesh, p SupportPoint, q *pointQueue, zMin float64, params Parameters) []TreePoint {
	cbLocation := geometry.NewVector3(p.Location.X, p.Location.Y, zMin)
	dcb := p.Location.Distance(cbLocation)

	cpPoint, dcp, haveCP := nearestMergeCandidate(p, q.items, params.AngleLimit)
	cmPoint, cmNormal, dcm, haveCM := nearestModelCandidate(m, p, params.AngleLimit)

	switch pickWinner(dcp, haveCP, dcm, haveCM, dcb) {
	case winCM:
		target := SupportPoint{Location: cmPoint, Origin: OriginModel, Normal: cmNormal}
		return []TreePoint{{Upper: p, Lower: target}}
	case winCP:
		junction := commonJunction(p.Location, cpPoint.Location, params.AngleLimit)
		common := SupportPoint{Location: junction, Origin: OriginCommon, Normal: buildUp}
		q.remove(cpPoint)
		q.push(common)
		return []TreePoint{{Upper: p, Lower: common}, {Upper: cpPoint, Lower: common}}
	default:
		target := SupportPoint{Location: cbLocation, Origin: OriginPlate, Normal: buildUp}
		return []TreePoint{{Upper: p, Lower: target}}
	}
}

// nearestMergeCandidate finds the nearest other queued point whose
// connector to p deviates from horizontal by less than pi/2 - angleLimit.
func nearestMergeCandidate(p SupportPoint, others []SupportPoint, angleLimit float64) (SupportPoint, float64, bool) {
	mergeLimit := math.Pi/2 - angleLimit

	var best SupportPoint
	bestDist := math.MaxFloat64
	found := false

	for _, other := range others {
		if other.Equal(p) {
			continue
		}
		connector := other.Location.Sub(p.Location)
		if connector.IsZero() {
			continue
		}
		if connector.AngleTo(connector.Horizontal()) >= mergeLimit {
			continue
		}
		dist := connector.Length()
		if dist < bestDist {
			bestDist = dist
			best = other
			found = true
		}
	}

	if !found {
		return SupportPoint{}, 0, false
	}
	return best, bestDist, true
}

// nearestModelCandidate finds the closest point on any mesh face that lies
// strictly below p and within the self-support cone around straight down.
// The mesh is scanned exhaustively: real print models rarely exceed a few
// hundred thousand faces and this runs once per routed point, not once per
// sample, so a spatial index was not worth the added surface (see
// DESIGN.md).
func nearestModelCandidate(m *mesh.Mesh, p SupportPoint, angleLimit float64) (geometry.Vector3, geometry.Vector3, float64, bool) {
	const belowEpsilon = 1e-9

	bestDist := math.MaxFloat64
	var bestPoint, bestNormal geometry.Vector3
	found := false

	for i := 0; i < m.FaceCount(); i++ {
		face := mesh.FaceID(i)
		tri := m.FaceTriangle(face)
		proj := tri.ClosestPoint(p.Location)
		if proj.Z >= p.Location.Z-belowEpsilon {
			continue
		}

		descent := p.Location.Sub(proj)
		if descent.AngleTo(buildUp) > angleLimit {
			continue
		}

		dist := descent.Length()
		if dist < bestDist {
			bestDist = dist
			bestPoint = proj
			bestNormal = m.FaceNormal(face)
			found = true
		}
	}

	if !found {
		return geometry.Vector3{}, geometry.Vector3{}, 0, false
	}
	return bestPoint, bestNormal, bestDist, true
}

// pickWinner implements the degenerate-distance tie-breaking rule: a
// zero-distance cp or cm is treated as absent, cb is always available,
// and among the remaining candidates ties favour cp, then cm, then cb.
func pickWinner(dcp float64, haveCP bool, dcm float64, haveCM bool, dcb float64) winner {
	effCP, effCM := 0.0, 0.0
	if haveCP {
		effCP = dcp
	}
	if haveCM {
		effCM = dcm
	}

	if effCP <= candidateEpsilon {
		if haveCM && effCM > candidateEpsilon {
			if effCM <= dcb {
				return winCM
			}
			return winCB
		}
		return winCB
	}

	best := winCP
	bestDist := effCP
	if haveCM && effCM > candidateEpsilon && effCM < bestDist-candidateEpsilon {
		best = winCM
		bestDist = effCM
	}
	if dcb < bestDist-candidateEpsilon {
		best = winCB
	}
	return best
}

// commonJunction finds where the self-support cones of p1 and p2 meet: the
// closest point between two rays, each starting at one input point and
// tilted away from straight down by angleLimit around the axis
// perpendicular to both the vertical and the line joining them.
func commonJunction(p1, p2 geometry.Vector3, angleLimit float64) geometry.Vector3 {
	diff := p2.Sub(p1)
	axis := diff.Cross(buildUp)
	if axis.IsZero() {
		axis = geometry.NewVector3(1, 0, 0)
	} else {
		axis = axis.Normalize()
	}

	down1 := geometry.NewVector3(0, 0, -p1.Z)
	down2 := geometry.NewVector3(0, 0, -p2.Z)

	line1 := geometry.Line{Point: p1, Direction: down1.RotateAround(axis, angleLimit)}
	line2 := geometry.Line{Point: p2, Direction: down2.RotateAround(axis, -angleLimit)}

	junction, _ := line1.ClosestPoint(line2)
	return junction
}
