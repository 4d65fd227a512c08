package paint

// StrokePoint is one pointer sample of a stroke. Samples arrive in
// order from the input surface; palm rejection and gesture
// disambiguation happen before points reach this package.
type StrokePoint struct {
	Pos      Point
	Pressure float64 // [0, 1]
	Tilt     float64 // radians from vertical
	Azimuth  float64 // radians, direction the stylus leans toward
	Time     int64   // milliseconds
}

// maxStabilizerHistory bounds how many raw points smoothing looks at.
const maxStabilizerHistory = 10

// StrokeStabilizer smooths raw pointer input by averaging recent
// points. At streamline 0 it passes points through untouched; at higher
// settings it averages over a wider window with newer points weighted
// more, trading latency for steadier lines. The smoothed position is a
// convex combination of recent raw points and never overshoots them.
type StrokeStabilizer struct {
	streamline float64
	history    []StrokePoint
}

// NewStrokeStabilizer creates a stabilizer with the given streamline
// strength in [0, 1].
func NewStrokeStabilizer(streamline float64) *StrokeStabilizer {
	return &StrokeStabilizer{
		streamline: clamp01(streamline),
		history:    make([]StrokePoint, 0, maxStabilizerHistory),
	}
}

// Reset clears the point history. Call at the start of every stroke.
func (s *StrokeStabilizer) Reset() {
	s.history = s.history[:0]
}

// Smooth records a raw point and returns its smoothed version.
// Tilt, azimuth, and timestamp always come from the raw point; only
// position and pressure are averaged.
func (s *StrokeStabilizer) Smooth(raw StrokePoint) StrokePoint {
	if len(s.history) == maxStabilizerHistory {
		copy(s.history, s.history[1:])
		s.history = s.history[:maxStabilizerHistory-1]
	}
	s.history = append(s.history, raw)

	if s.streamline <= 0 {
		return raw
	}

	window := 1 + int(s.streamline*float64(maxStabilizerHistory-1)+0.5)
	if window > len(s.history) {
		window = len(s.history)
	}
	if window <= 1 {
		return raw
	}

	// Weighted average over the window, oldest to newest with linearly
	// increasing weights.
	start := len(s.history) - window
	var pos Point
	var pressure, total float64
	for i := 0; i < window; i++ {
		w := float64(i + 1)
		p := s.history[start+i]
		pos = pos.Add(p.Pos.Mul(w))
		pressure += p.Pressure * w
		total += w
	}

	out := raw
	out.Pos = pos.Div(total)
	out.Pressure = pressure / total
	return out
}
