package analysis

import (
	"fmt"

	"github.com/nyxforge/supportgen/pkg/support"
)

// SupportSummary reports what the classifier, sampler, and router found,
// for the generate command's console output.
type SupportSummary struct {
	FaceCount   int
	EdgeCount   int
	VertexCount int
	SampleCount int
	StrutCount  int
}

// SummarizeSupport collects counts out of a classification/sample/route
// pass without re-running any of them.
func SummarizeSupport(flags support.Flags, points []support.SupportPoint, tree []support.TreePoint) SupportSummary {
	return SupportSummary{
		FaceCount:   len(flags.Faces),
		EdgeCount:   len(flags.Edges),
		VertexCount: len(flags.Vertices),
		SampleCount: len(points),
		StrutCount:  len(tree),
	}
}

// FormatSupportSummary renders a SupportSummary the way the other analysis
// commands render theirs: a plain, left-aligned block of labeled counts.
func FormatSupportSummary(s SupportSummary) string {
	return fmt.Sprintf(
		"Overhanging faces: %d\nOverhanging ridge edges: %d\nOverhanging vertices: %d\nSample points: %d\nRouted struts: %d\n",
		s.FaceCount, s.EdgeCount, s.VertexCount, s.SampleCount, s.StrutCount,
	)
}
