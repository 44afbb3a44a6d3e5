package support

import (
	"math"

	"github.com/nyxforge/supportgen/pkg/geometry"
)

// minStrutRadius is the floor applied to every strut, regardless of what
// the length/angle formula below would otherwise produce; struts thinner
// than this print unreliably.
const minStrutRadius = 1.0

// MeshStruts turns a forest of TreePoints into a triangle soup: one small
// triangular prism per strut, welded to the model where an endpoint's
// origin calls for it and capped where it terminates in free space.
func MeshStruts(tree []TreePoint, params Parameters, progress ProgressFunc) []geometry.Triangle {
	progress = progressOrNoop(progress)

	var triangles []geometry.Triangle
	total := len(tree)
	for i, tp := range tree {
		triangles = append(triangles, meshStrut(tp, params.DiameterCoefficient)...)
		progress(StageMesh, percentOf(i+1, total))
	}
	progress(StageMesh, 100)
	return triangles
}

// meshStrut builds the triangles for a single TreePoint. The cross-section
// is a triangular ring of radius r held constant along the strut rather
// than swept perpendicular to its axis, matching the tolerances a slicer
// applies to support material — the resulting prism can look slightly
// skewed on a steep strut, which is acceptable per the mesher's own
// non-manifold-is-fine contract.
func meshStrut(tp TreePoint, diameterCoefficient float64) []geometry.Triangle {
	upper, lower := tp.Upper, tp.Lower
	r := strutRadius(tp, diameterCoefficient)

	upperRing := ringPoints(upper.Location, r)
	var lowerRing [3]geometry.Vector3
	if lower.Origin == OriginModel {
		lowerRing = rotatedRingPoints(lower.Location, r, lower.Normal)
	} else {
		lowerRing = ringPoints(lower.Location, r)
	}

	var triangles []geometry.Triangle

	if upper.Origin == OriginModel {
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			triangles = append(triangles, makeTriangle(upper.Location, lowerRing[i], lowerRing[j]))
		}
	} else {
		triangles = append(triangles, makeTriangle(upperRing[0], upperRing[1], upperRing[2]))
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			triangles = append(triangles, makeTriangle(upperRing[i], upperRing[j], lowerRing[i]))
			triangles = append(triangles, makeTriangle(upperRing[j], lowerRing[j], lowerRing[i]))
		}
	}

	if lower.Origin == OriginPlate {
		triangles = append(triangles, makeTriangle(lowerRing[2], lowerRing[1], lowerRing[0]))
	}

	return triangles
}

// strutRadius implements the length/angle radius formula, keeping the
// original units-are-weird form (radians multiplied straight into the
// coefficient) for source fidelity rather than the cleaner max(rMin,
// coeff*L) alternative — see DESIGN.md for the open-question rationale.
func strutRadius(tp TreePoint, diameterCoefficient float64) float64 {
	length := tp.Length()
	theta := tp.Upper.Location.Sub(tp.Lower.Location).AngleTo(buildUp)
	thetaFactor := theta
	if theta == 0 {
		thetaFactor = 1
	}
	r := diameterCoefficient * length * thetaFactor
	if r < minStrutRadius {
		return minStrutRadius
	}
	return r
}

// ringPoints returns three points at radius from center, spaced at
// multiples of 2*pi/3 in the XY plane.
func ringPoints(center geometry.Vector3, radius float64) [3]geometry.Vector3 {
	var pts [3]geometry.Vector3
	for i := 0; i < 3; i++ {
		angle := float64(i) * 2 * math.Pi / 3
		pts[i] = center.Add(geometry.NewVector3(radius*math.Cos(angle), radius*math.Sin(angle), 0))
	}
	return pts
}

// rotatedRingPoints builds a ring like ringPoints but tilted so its plane's
// normal matches the given surface normal, used to weld a strut's lower
// ring flush against the model face it lands on.
func rotatedRingPoints(center geometry.Vector3, radius float64, normal geometry.Vector3) [3]geometry.Vector3 {
	if normal.IsZero() {
		return ringPoints(center, radius)
	}
	normal = normal.Normalize()

	axis := buildUp.Cross(normal)
	flat := ringPoints(geometry.Vector3{}, radius)

	if axis.IsZero() {
		var ring [3]geometry.Vector3
		for i, p := range flat {
			ring[i] = center.Add(p)
		}
		return ring
	}

	axis = axis.Normalize()
	angle := buildUp.AngleTo(normal)

	var ring [3]geometry.Vector3
	for i, p := range flat {
		ring[i] = center.Add(p.RotateAround(axis, angle))
	}
	return ring
}

func makeTriangle(a, b, c geometry.Vector3) geometry.Triangle {
	tri := geometry.NewTriangle(geometry.Vector3{}, a, b, c)
	tri.Normal = tri.CalculateNormal()
	return tri
}
