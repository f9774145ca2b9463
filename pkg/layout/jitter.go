package layout

// Range is a closed interval used for jitter sampling.
// Translation ranges are in normalized canvas fractions, scale ranges are
// multiplicative factors near 1.0, rotation ranges are in degrees.
type Range struct {
	Min float64 `json:"min" bson:"min" toml:"min"`
	Max float64 `json:"max" bson:"max" toml:"max"`
}

// Sample draws one value uniformly from the range, advancing the RNG once.
func (r Range) Sample(rng *RNG) float64 {
	return r.Min + rng.Next()*(r.Max-r.Min)
}

// Jitter is the per-slot perturbation configuration authored in templates.
type Jitter struct {
	DX       Range `json:"dx" bson:"dx" toml:"dx"`
	DY       Range `json:"dy" bson:"dy" toml:"dy"`
	Scale    Range `json:"scale" bson:"scale" toml:"scale"`
	Rotation Range `json:"rotation" bson:"rotation" toml:"rotation"`
}

// jitterDraw holds one resolved set of jitter values.
type jitterDraw struct {
	dx, dy, scale, rotation float64
}

// drawImage samples all four jitter values for an image slot.
//
// This is the single call site that fixes the draw order (dx, dy, scale,
// rotation). Reordering these lines silently changes every generated layout.
func (j Jitter) drawImage(rng *RNG) jitterDraw {
	d := jitterDraw{}
	d.dx = j.DX.Sample(rng)
	d.dy = j.DY.Sample(rng)
	d.scale = j.Scale.Sample(rng)
	d.rotation = j.Rotation.Sample(rng)
	return d
}

// drawText samples jitter for a text frame: dx, dy, rotation.
// Text frames never scale, so the scale range is not drawn at all — drawing
// and discarding it would still advance the RNG and shift later draws.
func (j Jitter) drawText(rng *RNG) jitterDraw {
	d := jitterDraw{scale: 1}
	d.dx = j.DX.Sample(rng)
	d.dy = j.DY.Sample(rng)
	d.rotation = j.Rotation.Sample(rng)
	return d
}
