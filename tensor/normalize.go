package tensor

// PixelToUnit maps an 8-bit pixel intensity in [0, 255] to [-1, 1].
func PixelToUnit(x float32) float32 {
	return x/255.0*2.0 - 1.0
}

// NormalizeFrames applies PixelToUnit independently to every frame of a
// frames-first tensor and restacks the frames along the leading axis.
func NormalizeFrames(frames *Tensor) (*Tensor, error) {
	n := frames.Dim(0)
	out := make([]*Tensor, 0, n)
	for i := 0; i < n; i++ {
		f, err := frames.Index(i)
		if err != nil {
			return nil, err
		}
		out = append(out, f.Map(PixelToUnit))
	}
	return Stack(out)
}
