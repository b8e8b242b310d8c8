package gesture

// Sample is one smoothable pose reading relative to the calibration
// baseline: yaw and pitch in degrees, special is the mouth-ratio delta.
type Sample struct {
	Yaw     float64
	Pitch   float64
	Special float64
}

// History is a fixed-capacity FIFO of recent pose samples used to smooth
// per-frame detector noise. The oldest sample is evicted first once the
// window is full; length never exceeds the capacity.
type History struct {
	samples  []Sample
	capacity int
}

// NewHistory creates a History with the given window size.
// Sizes below 1 are clamped to 1.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		samples:  make([]Sample, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a sample, evicting the oldest if the window is full.
func (h *History) Append(s Sample) {
	if len(h.samples) >= h.capacity {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:h.capacity-1]
	}
	h.samples = append(h.samples, s)
}

// Mean returns the simple moving average over the current window.
// Returns the zero sample when the window is empty.
func (h *History) Mean() Sample {
	n := len(h.samples)
	if n == 0 {
		return Sample{}
	}

	var sum Sample
	for _, s := range h.samples {
		sum.Yaw += s.Yaw
		sum.Pitch += s.Pitch
		sum.Special += s.Special
	}

	return Sample{
		Yaw:     sum.Yaw / float64(n),
		Pitch:   sum.Pitch / float64(n),
		Special: sum.Special / float64(n),
	}
}

// Len returns the number of buffered samples.
func (h *History) Len() int {
	return len(h.samples)
}

// Clear empties the window.
func (h *History) Clear() {
	h.samples = h.samples[:0]
}
