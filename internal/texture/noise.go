package texture

import "math/rand"

// Noise generates a value-noise raster, the stand-in paper grain used when
// a brush has no grain image configured. The lattice wraps, so edges
// continue across the seam under AddressWrap sampling. cell controls
// feature size in texels; the same seed always produces the same raster.
func Noise(width, height, cell int, seed int64) *Source {
	if width <= 0 || height <= 0 {
		return nil
	}
	if cell < 1 {
		cell = 1
	}

	rng := rand.New(rand.NewSource(seed))

	// Lattice of random values; +1 so interpolation can wrap cleanly.
	gw := (width + cell - 1) / cell
	gh := (height + cell - 1) / cell
	lattice := make([]byte, gw*gh)
	for i := range lattice {
		lattice[i] = byte(rng.Intn(256))
	}
	latticeAt := func(gx, gy int) float64 {
		return float64(lattice[wrapIndex(gy, gh)*gw+wrapIndex(gx, gw)])
	}

	s := &Source{width: width, height: height, pix: make([]byte, width*height)}
	for y := 0; y < height; y++ {
		gy := y / cell
		ty := smoothstep(float64(y%cell) / float64(cell))
		for x := 0; x < width; x++ {
			gx := x / cell
			tx := smoothstep(float64(x%cell) / float64(cell))

			top := lerp(latticeAt(gx, gy), latticeAt(gx+1, gy), tx)
			bot := lerp(latticeAt(gx, gy+1), latticeAt(gx+1, gy+1), tx)
			s.pix[y*width+x] = byte(lerp(top, bot, ty) + 0.5)
		}
	}
	return s
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}
