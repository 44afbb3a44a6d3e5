// Package support implements the core support-structure generator: the
// overhang classifier, support-point sampler, tree router, and strut
// mesher described for a bottom-up FDM print. The whole package is a
// pure transform from a mesh and a set of Parameters to a support-only
// triangle mesh; nothing here touches a file, a GUI, or a goroutine.
package support

import (
	"math"

	"github.com/nyxforge/supportgen/pkg/geometry"
)

// Origin tags where a SupportPoint came from. It is a closed, three-case
// sum type rather than an inheritance hierarchy: the router and mesher
// both dispatch on it directly.
type Origin int

const (
	// OriginModel points lie on the input mesh surface and carry a
	// meaningful surface normal.
	OriginModel Origin = iota
	// OriginCommon points are interior junctions introduced by the
	// router when two branches merge or a point is lifted for clearance.
	OriginCommon
	// OriginPlate points lie on the build plate (Z = Zmin).
	OriginPlate
)

// String renders an Origin for logging and CLI output.
func (o Origin) String() string {
	switch o {
	case OriginModel:
		return "model"
	case OriginCommon:
		return "common"
	case OriginPlate:
		return "plate"
	default:
		return "unknown"
	}
}

// SupportPoint is a single location a strut must connect to. Two
// SupportPoints are Equal iff their locations are equal componentwise;
// Origin and Normal do not participate in equality, matching how the
// sampler deduplicates its point cloud purely by position.
type SupportPoint struct {
	Location geometry.Vector3
	Origin   Origin
	Normal   geometry.Vector3
}

// Equal reports whether two support points occupy the same location.
func (p SupportPoint) Equal(other SupportPoint) bool {
	return p.Location == other.Location
}

// TreePoint is a directed support edge: Upper is supported by Lower. The
// full set of TreePoints forms a forest — every Upper appears as an Upper
// in at most one edge.
type TreePoint struct {
	Upper SupportPoint
	Lower SupportPoint
}

// Length returns the strut's 3D length.
func (t TreePoint) Length() float64 {
	return t.Upper.Location.Distance(t.Lower.Location)
}

// Parameters configures every stage of the pipeline.
type Parameters struct {
	// AngleLimit is the overhang angle in radians, measured from the
	// build-plane normal (+Z). Faces whose normal points at least this far
	// below horizontal are flagged; struts routed to the model or to a
	// merge junction lean at most this far from vertical.
	AngleLimit float64
	// GridDensity is the number of sample rows per overhanging triangle
	// side. Must be >= 2.
	GridDensity int
	// DiameterCoefficient scales strut radius, see mesher.go.
	DiameterCoefficient float64
}

// DefaultAngleLimitDegrees is the spec's default self-support angle.
const DefaultAngleLimitDegrees = 60.0

// DefaultParameters returns the recognised default configuration.
func DefaultParameters() Parameters {
	return Parameters{
		AngleLimit:          DefaultAngleLimitDegrees * math.Pi / 180.0,
		GridDensity:         4,
		DiameterCoefficient: 0.07,
	}
}

// Validate reports whether the parameters are within the ranges the spec
// enumerates for them.
func (p Parameters) Validate() error {
	if p.AngleLimit < 0 || p.AngleLimit > math.Pi/2 {
		return errParam("angleLimit must be within [0, pi/2] radians")
	}
	if p.GridDensity < 2 {
		return errParam("gridDensity must be >= 2")
	}
	if p.DiameterCoefficient < 0 || p.DiameterCoefficient > 1 {
		return errParam("diameterCoefficient must be within [0, 1]")
	}
	return nil
}

type paramError string

func (e paramError) Error() string { return string(e) }

func errParam(msg string) error { return paramError(msg) }
