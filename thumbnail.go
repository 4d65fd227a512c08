package paint

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
)

// scaleThumbnail resizes a composite snapshot so its longer edge fits
// maxEdge, preserving aspect ratio. Composites at or under the limit pass
// through unscaled.
func scaleThumbnail(snap *Pixmap, maxEdge int) image.Image {
	w, h := snap.Width(), snap.Height()
	long := max(w, h)
	if long <= maxEdge {
		return snap.ToImage()
	}

	scale := float64(maxEdge) / float64(long)
	tw := max(int(float64(w)*scale+0.5), 1)
	th := max(int(float64(h)*scale+0.5), 1)
	return transform.Resize(snap.ToImage(), tw, th, transform.Linear)
}
