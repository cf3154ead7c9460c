package dxt

import "github.com/samiperttu/bimdexter/pkg/vec3"

// colorWeight gives the weight of endpoint 1 for each of the four palette
// entries; 1 - colorWeight[i] is the weight of endpoint 0. Entries 0 and 1
// are the encoded endpoints themselves (weights 0 and 1); entries 2 and 3
// are the thirds interpolations.
var colorWeight = [4]float32{0, 1, 1.0 / 3.0, 2.0 / 3.0}

// Palette is a length-4 sequence of endpoint/derived colors in
// importance-weighted space. Color[0] and Color[1] are the block's
// encoded endpoints; Color[2] and Color[3] are always derived from them
// by Complete.
type Palette struct {
	Color [4]vec3.Vec3
}

// Complete clamps endpoints 0 and 1 to the weighted 8-bit range and
// re-derives entries 2 and 3 as the 1/3 and 2/3 interpolations between
// them. It is idempotent: calling it twice in a row leaves the palette
// unchanged, since the clamp and the interpolation are both pure
// functions of the (already clamped) endpoints.
func (p *Palette) Complete(weight vec3.Vec3) {
	maxColor := weight.Scale(255)
	for i := 0; i < 2; i++ {
		p.Color[i] = p.Color[i].Clamp(vec3.Splat(0), maxColor)
	}
	for i := 2; i < 4; i++ {
		p.Color[i] = vec3.Lerp(p.Color[0], p.Color[1], colorWeight[i])
	}
}

// CodedPixel is the result of matching one pixel against a palette: the
// nearest entry, the squared error at that entry, and the two endpoint
// gradients implied by the affine relationship between the four palette
// entries and the two encoded endpoints.
type CodedPixel struct {
	Gradient0 vec3.Vec3
	Gradient1 vec3.Vec3
	Error     float32
	Index     int
}

// Encode finds the palette entry nearest to pixel and records the
// squared error and the partial derivatives of that error with respect
// to endpoints 0 and 1.
func (c *CodedPixel) Encode(pixel vec3.Vec3, palette *Palette) {
	c.Error = 1.0e10
	for i := 0; i < 4; i++ {
		g := palette.Color[i].Sub(pixel)
		e := g.Length2()
		if e < c.Error {
			c.Error = e
			c.Gradient0 = g.Scale(1 - colorWeight[i])
			c.Gradient1 = g.Scale(colorWeight[i])
			c.Index = i
		}
	}
}
