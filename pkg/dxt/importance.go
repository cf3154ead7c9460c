package dxt

import (
	"math"

	"github.com/samiperttu/bimdexter/pkg/vec3"
)

// Importance gives the relative weight of each color channel with
// respect to squared error. The spec.md default is (3, 4, 2); -u on the
// CLI selects Uniform instead.
//
// The original program stores this as mutable global state
// (DxtPalette::colorImportance in PixelBlock.cpp). Per spec.md's own
// design note, we thread it explicitly as a field on Encoder instead: the
// CLI still only needs to set it once per conversion, but nothing in this
// package reads or writes package-level mutable state.
type Importance struct {
	R, G, B float32
}

// DefaultImportance is the (3, 4, 2) default weighting.
var DefaultImportance = Importance{R: 3, G: 4, B: 2}

// UniformImportance weighs all three channels equally, selected by the
// CLI's -u flag.
var UniformImportance = Importance{R: 1, G: 1, B: 1}

// weight returns s = (sqrt(R), sqrt(G), sqrt(B)): multiplying an 8-bit
// RGB triple component-wise by weight maps it into the space in which
// ordinary squared Euclidean distance equals the intended weighted
// squared error.
func (imp Importance) weight() vec3.Vec3 {
	return vec3.New(sqrt32(imp.R), sqrt32(imp.G), sqrt32(imp.B))
}

func sqrt32(f float32) float32 {
	return float32(math.Sqrt(float64(f)))
}
