package support

import (
	"github.com/nyxforge/supportgen/pkg/mesh"
	"github.com/nyxforge/supportgen/pkg/stl"
)

// Result holds every intermediate artifact of a run, not just the final
// mesh, so a caller (the CLI's overhang report, a future GUI) can inspect
// what the pipeline decided without re-running it.
type Result struct {
	Flags  Flags
	Points []SupportPoint
	Tree   []TreePoint
	Model  *stl.Model
}

// Transform runs the full C -> S -> T -> G pipeline against m and returns
// the support-only mesh as a *stl.Model, ready to be combined with the
// input via stl.Combine. It is a pure function of (m, params); the only
// side effect is calling progress, which must not block.
func Transform(m *mesh.Mesh, params Parameters, progress ProgressFunc) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	progress = progressOrNoop(progress)

	if m.IsEmpty() {
		return &Result{Model: stl.NewModel("support")}, nil
	}

	flags := Classify(m, params)
	progress(StageClassify, 100)

	points := Sample(m, flags, params, progress)
	tree := Route(m, points, params, progress)
	triangles := MeshStruts(tree, params, progress)

	model := stl.NewModel("support")
	model.Triangles = triangles

	return &Result{
		Flags:  flags,
		Points: points,
		Tree:   tree,
		Model:  model,
	}, nil
}
