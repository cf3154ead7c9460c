package dxt

import (
	"github.com/samiperttu/bimdexter/pkg/pixmap"
	"github.com/samiperttu/bimdexter/pkg/vec3"
)

// blockPixels is the number of pixels in a 4x4 tile.
const blockPixels = Size * Size

// Encoder compresses 4x4 pixel tiles into DXT1 blocks under a fixed color
// Importance. It holds no other state and is safe to share across
// goroutines compressing different blocks of the same pixmap.
type Encoder struct {
	Importance Importance
}

// NewEncoder returns an Encoder using the given channel importance.
func NewEncoder(importance Importance) *Encoder {
	return &Encoder{Importance: importance}
}

func (e *Encoder) weight() vec3.Vec3 {
	return e.Importance.weight()
}

// readBlock reads the 16 pixels at (x0, y0) in the decoder's traversal
// order (dy descending, dx ascending) into importance-weighted Vec3s.
func (e *Encoder) readBlock(pm *pixmap.Pixmap, x0, y0 int) [blockPixels]vec3.Vec3 {
	w := e.weight()
	var data [blockPixels]vec3.Vec3
	i := 0
	for dy := Size - 1; dy >= 0; dy-- {
		for dx := 0; dx < Size; dx++ {
			px := pm.Get(x0+dx, y0+dy)
			data[i] = vec3.New(float32(px.R), float32(px.G), float32(px.B)).Mul(w)
			i++
		}
	}
	return data
}

// CompressBlock compresses the 4x4 tile at (x0, y0) and returns the wire
// block plus the unweighted squared error (weighted error divided by
// |weight|^2, i.e. back in 8-bit squared-error units). x0 and y0 must be
// divisible by 4 and within the pixmap.
func (e *Encoder) CompressBlock(pm *pixmap.Pixmap, x0, y0 int) (Block, float32) {
	w := e.weight()
	data := e.readBlock(pm, x0, y0)

	var sum vec3.Vec3
	for _, d := range data {
		sum = sum.Add(d)
	}
	mean := sum.ScaleDiv(blockPixels)

	var covX, covY, covZ vec3.Vec3
	for _, d0 := range data {
		d := d0.Sub(mean)
		covX = covX.Add(d.Scale(d.X))
		covY = covY.Add(d.Scale(d.Y))
		covZ = covZ.Add(d.Scale(d.Z))
	}

	// Constant-block fast path. This doubles as a guard against power
	// iteration misbehaving on a near-singular covariance matrix.
	if covX.X+covY.Y+covZ.Z < 0.1 {
		return Block{Color0: encode565(data[0], w), Color1: 0, Bitmap: 0}, 0
	}

	covX = covX.ScaleDiv(blockPixels)
	covY = covY.ScaleDiv(blockPixels)
	covZ = covZ.ScaleDiv(blockPixels)

	mini, maxi := data[0], data[0]
	for _, d := range data[1:] {
		mini = vec3.Min(mini, d)
		maxi = vec3.Max(maxi, d)
	}

	// Power iteration for the principal eigenpair, seeded with the
	// bounding-box diagonal so it starts roughly aligned with the
	// dominant variance axis.
	b := maxi.Sub(mini)
	var v float32
	for iter := 0; iter < 12; iter++ {
		b = vec3.New(vec3.Dot(b, covX), vec3.Dot(b, covY), vec3.Dot(b, covZ))
		v = b.Length()
		b = b.ScaleDiv(v)
	}

	if !b.Finite() {
		// Power iteration collapsed despite passing the early-out check
		// above; fall back to representing the block by its mean color.
		return Block{Color0: encode565(mean, w), Color1: 0, Bitmap: 0}, 0
	}

	var palette Palette
	bestErr := float32(1.0e10)
	for _, factor := range [...]float32{0.5, 1, 2} {
		stdev := sqrt32(factor * v)

		var candidate Palette
		candidate.Color[0] = mean.Add(b.Scale(stdev))
		candidate.Color[1] = mean.Sub(b.Scale(stdev))
		candidate.Complete(w)

		candErr := gradientDescent(data[:], w, 8, &candidate)
		if candErr < bestErr {
			palette = candidate
			bestErr = candErr
		}
	}

	gradientDescent(data[:], w, 64, &palette)

	block := Block{
		Color0: encode565(palette.Color[0], w),
		Color1: encode565(palette.Color[1], w),
	}

	// DXT1 requires color0 > color1 for the opaque (non-alpha)
	// interpretation; swap endpoints and their derived palette entries to
	// enforce it.
	if block.Color0 < block.Color1 {
		block.Color0, block.Color1 = block.Color1, block.Color0
		palette.Color[0], palette.Color[1] = palette.Color[1], palette.Color[0]
		palette.Color[2], palette.Color[3] = palette.Color[3], palette.Color[2]
	}

	var totalErr float32
	var coded CodedPixel
	for i, d := range data {
		coded.Encode(d, &palette)
		totalErr += coded.Error
		block.Bitmap |= uint32(coded.Index) << uint(i*2)
	}

	// Equal endpoints after quantization collapse all four palette colors
	// to the same value; index 0 alone represents this identically. Such a
	// block is in the 1-bit-alpha form, and using only index 0 keeps every
	// pixel off the transparent entry 3.
	if block.Color0 == block.Color1 {
		block.Bitmap = 0
	}

	return block, totalErr / w.Length2()
}

// gradientDescent refines palette in place to reduce total weighted
// squared error over data, for up to maxIterations steps, and returns the
// final error. Pixel-to-palette-entry assignments are recomputed on every
// trial step, so the search is free to cross Voronoi boundaries between
// iterations.
func gradientDescent(data []vec3.Vec3, weight vec3.Vec3, maxIterations int, palette *Palette) float32 {
	n := len(data)
	stepSize := 8.0 / float32(n)
	minStepSize := stepSize / 16

	var coded CodedPixel
	var errSum float32
	var grad0, grad1 vec3.Vec3
	for _, d := range data {
		coded.Encode(d, palette)
		errSum += coded.Error
		grad0 = grad0.Add(coded.Gradient0)
		grad1 = grad1.Add(coded.Gradient1)
	}

	var trial Palette
	for iter := 0; iter < maxIterations && stepSize > minStepSize; iter++ {
		for i := 0; i < 2; i++ {
			trial.Color[i] = palette.Color[i].Sub(vec3.Lerp(grad0, grad1, colorWeight[i]).Scale(stepSize))
		}
		trial.Complete(weight)

		var trialErr float32
		var trialGrad0, trialGrad1 vec3.Vec3
		for _, d := range data {
			coded.Encode(d, &trial)
			trialErr += coded.Error
			trialGrad0 = trialGrad0.Add(coded.Gradient0)
			trialGrad1 = trialGrad1.Add(coded.Gradient1)
		}

		if trialErr < errSum {
			*palette = trial
			errSum = trialErr
			grad0 = trialGrad0
			grad1 = trialGrad1
			stepSize *= 1.2
		} else {
			stepSize *= 0.5
		}
	}

	return errSum
}
