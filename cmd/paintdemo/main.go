// Command paintdemo demonstrates the paint digital painting engine.
//
// With no arguments it paints a built-in multi-layer scene; with -scene
// it replays a YAML stroke recording. The composite is written as PNG,
// optionally as PDF and as a thumbnail.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gogpu/paint"
)

func main() {
	var (
		width      = flag.Int("width", 800, "canvas width")
		height     = flag.Int("height", 600, "canvas height")
		scenePath  = flag.String("scene", "", "YAML scene to replay instead of the built-in demo")
		output     = flag.String("output", "demo.png", "output file")
		pdfPath    = flag.String("pdf", "", "also export the composite as PDF")
		thumbEdge  = flag.Int("thumb", 0, "also write a thumbnail with this max edge")
		seed       = flag.Int64("seed", 1, "random seed for brush jitter")
		verifyUndo = flag.Bool("verify-undo", false, "undo and redo every edit, then check the composite is unchanged")
	)
	flag.Parse()

	var scene *sceneFile
	if *scenePath != "" {
		var err error
		if scene, err = loadScene(*scenePath); err != nil {
			log.Fatalf("Failed to load scene: %v", err)
		}
		*width, *height = scene.Width, scene.Height
	}

	opts := []paint.CanvasOption{paint.WithSeed(*seed)}
	background := paint.Hex("#2b2b33")
	if scene != nil {
		if scene.Background != "" {
			background = paint.Hex(scene.Background)
		}
		if scene.Seed != nil {
			opts = []paint.CanvasOption{paint.WithSeed(*scene.Seed)}
		}
	}
	opts = append(opts, paint.WithBackground(background))

	canvas := paint.NewCanvas(*width, *height, opts...)
	defer canvas.Close()

	if scene != nil {
		if err := replayScene(canvas, scene); err != nil {
			log.Fatalf("Failed to replay scene: %v", err)
		}
	} else {
		if err := paintBuiltinScene(canvas, *width, *height); err != nil {
			log.Fatalf("Failed to paint demo scene: %v", err)
		}
	}

	if *verifyUndo {
		if err := verifyUndoRoundTrip(canvas); err != nil {
			log.Fatalf("Undo round-trip failed: %v", err)
		}
	}

	composite := canvas.CompositeAll()
	if err := composite.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Demo saved to %s (%dx%d)", *output, *width, *height)

	if *pdfPath != "" {
		if err := exportPDF(*pdfPath, composite); err != nil {
			log.Fatalf("Failed to export PDF: %v", err)
		}
		log.Printf("PDF saved to %s", *pdfPath)
	}

	if *thumbEdge > 0 {
		thumb, err := canvas.Thumbnail(*thumbEdge)
		if err != nil {
			log.Fatalf("Failed to render thumbnail: %v", err)
		}
		path := strings.TrimSuffix(*output, filepath.Ext(*output)) + "_thumb.png"
		if err := savePNG(path, thumb); err != nil {
			log.Fatalf("Failed to save thumbnail: %v", err)
		}
		log.Printf("Thumbnail saved to %s", path)
	}
}

// paintBuiltinScene layers a small painting: a washed backdrop, ribbons
// with color jitter, a clipped shading pass, and screen-mode sparks.
func paintBuiltinScene(c *paint.Canvas, w, h int) error {
	if err := paintWash(c, w, h); err != nil {
		return err
	}
	if err := paintRibbons(c, w, h); err != nil {
		return err
	}
	if err := paintShading(c, w, h); err != nil {
		return err
	}
	return paintSparks(c, w, h)
}

// paintWash lays broad horizontal color bands on the base layer with a
// soft grainy brush.
func paintWash(c *paint.Canvas, w, h int) error {
	grain, err := paint.PrepareGrainImage(noisePaper(256, 11))
	if err != nil {
		return err
	}

	b := paint.DefaultBrush()
	b.Name = "Wash"
	b.Size = float64(h) / 5
	b.Opacity = 0.55
	b.Flow = 0.5
	b.Spacing = 0.06
	b.Shape = paint.DiscShape(0.15)
	b.Grain = paint.GrainSettings{
		Source:   grain,
		Scale:    1,
		Zoom:     1.5,
		Blend:    paint.GrainMultiply,
		Depth:    0.35,
		Movement: paint.GrainTexturized,
	}
	b = b.Normalize()

	bands := []paint.RGBA{
		paint.HSV(24, 0.75, 0.95),
		paint.HSV(340, 0.55, 0.8),
		paint.HSV(268, 0.5, 0.6),
		paint.HSV(228, 0.55, 0.42),
	}
	for i, col := range bands {
		y := float64(h) * (0.18 + 0.22*float64(i))
		pts := pathPoints(func(t float64) paint.Point {
			return paint.Pt(-b.Size/2+t*(float64(w)+b.Size), y+18*math.Sin(t*3.1))
		}, 48)
		if err := stroke(c, b, col, pts); err != nil {
			return err
		}
	}
	return nil
}

// paintRibbons adds a layer of tapered sine ribbons with per-stamp hue
// jitter.
func paintRibbons(c *paint.Canvas, w, h int) error {
	id, err := c.AddLayer()
	if err != nil {
		return err
	}
	if l, err := c.Layer(id); err == nil {
		l.Name = "Ribbons"
	}

	b := paint.DefaultBrush()
	b.Name = "Ribbon"
	b.Size = 26
	b.Spacing = 0.08
	b.Shape = paint.DiscShape(0.8)
	b.Streamline = 0.35
	b.Taper = paint.TaperSettings{Length: 2, Size: 0.85, Opacity: 0.6}
	b.Dynamics = paint.ColorDynamicsSettings{HueJitter: 14, PerStamp: true}
	b = b.Normalize()

	ribbons := []struct {
		col   paint.RGBA
		base  float64
		amp   float64
		waves float64
	}{
		{paint.HSV(38, 0.85, 0.98), 0.35, 0.1, 2.2},
		{paint.HSV(168, 0.6, 0.85), 0.5, 0.14, 1.7},
		{paint.HSV(208, 0.7, 0.9), 0.66, 0.08, 2.8},
	}
	for _, r := range ribbons {
		pts := pathPoints(func(t float64) paint.Point {
			x := float64(w) * (0.06 + 0.88*t)
			y := float64(h) * (r.base + r.amp*math.Sin(t*r.waves*2*math.Pi))
			return paint.Pt(x, y)
		}, 72)
		if err := stroke(c, b, r.col, pts); err != nil {
			return err
		}
	}
	return nil
}

// paintShading multiplies a soft gray pass clipped to the ribbons, so
// the shading lands only where ribbon pixels exist.
func paintShading(c *paint.Canvas, w, h int) error {
	id, err := c.AddLayer()
	if err != nil {
		return err
	}
	if l, err := c.Layer(id); err == nil {
		l.Name = "Shading"
	}
	if err := c.SetBlendMode(id, paint.BlendMultiply); err != nil {
		return err
	}
	if err := c.SetOpacity(id, 0.7); err != nil {
		return err
	}
	if _, err := c.ToggleClippingMask(id); err != nil {
		return err
	}

	b := paint.DefaultBrush()
	b.Name = "Shade"
	b.Size = float64(h) / 4
	b.Opacity = 0.6
	b.Spacing = 0.1
	b.Shape = paint.DiscShape(0.1)
	b = b.Normalize()

	for _, base := range []float64{0.62, 0.78} {
		pts := pathPoints(func(t float64) paint.Point {
			return paint.Pt(float64(w)*t, float64(h)*base)
		}, 36)
		if err := stroke(c, b, paint.HSV(228, 0.3, 0.35), pts); err != nil {
			return err
		}
	}
	return nil
}

// paintSparks scatters bright dabs on a screen-mode layer.
func paintSparks(c *paint.Canvas, w, h int) error {
	id, err := c.AddLayer()
	if err != nil {
		return err
	}
	if l, err := c.Layer(id); err == nil {
		l.Name = "Sparks"
	}
	if err := c.SetBlendMode(id, paint.BlendScreen); err != nil {
		return err
	}

	b := paint.DefaultBrush()
	b.Name = "Spark"
	b.Size = 9
	b.Spacing = 0.6
	b.Scatter = 0.9
	b.StampCount = 2
	b.Shape = paint.DiscShape(0.95)
	b.Dynamics = paint.ColorDynamicsSettings{BrightnessJitter: 0.3, PerStamp: true}
	b = b.Normalize()

	for i := 0; i < 3; i++ {
		y0 := float64(h) * (0.2 + 0.25*float64(i))
		pts := pathPoints(func(t float64) paint.Point {
			return paint.Pt(float64(w)*(0.15+0.7*t), y0+float64(w)*0.12*t)
		}, 40)
		if err := stroke(c, b, paint.HSV(48, 0.35, 1), pts); err != nil {
			return err
		}
	}
	return nil
}

// stroke drives one full gesture through the canvas.
func stroke(c *paint.Canvas, b paint.Brush, col paint.RGBA, pts []paint.StrokePoint) error {
	if len(pts) == 0 {
		return nil
	}
	if err := c.BeginStroke(b, col, pts[0]); err != nil {
		return err
	}
	for _, p := range pts[1:] {
		if err := c.ExtendStroke(p); err != nil {
			_ = c.CancelStroke()
			return err
		}
	}
	return c.EndStroke()
}

// pathPoints samples a parametric path into stroke points with a sine
// pressure envelope, so strokes swell in the middle and taper out.
func pathPoints(fn func(t float64) paint.Point, steps int) []paint.StrokePoint {
	pts := make([]paint.StrokePoint, steps)
	for i := range pts {
		t := float64(i) / float64(steps-1)
		pts[i] = paint.StrokePoint{
			Pos:      fn(t),
			Pressure: 0.15 + 0.85*math.Sin(math.Pi*t),
			Time:     int64(i) * 8,
		}
	}
	return pts
}

// noisePaper builds a small random-value texture used as brush grain.
func noisePaper(size int, seed int64) image.Image {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = uint8(150 + rng.Intn(106))
	}
	return img
}

// verifyUndoRoundTrip unwinds the whole edit history and replays it,
// checking the composite comes back byte for byte.
func verifyUndoRoundTrip(c *paint.Canvas) error {
	want := c.CompositeAll().Clone()
	steps := 0
	for c.CanUndo() {
		if err := c.Undo(); err != nil {
			return err
		}
		steps++
	}
	for c.CanRedo() {
		if err := c.Redo(); err != nil {
			return err
		}
	}
	got := c.CompositeAll()
	if !bytes.Equal(got.Data(), want.Data()) {
		return fmt.Errorf("composite differs after %d undos and redos", steps)
	}
	log.Printf("Undo round-trip OK (%d edits)", steps)
	return nil
}

// exportPDF embeds the composite as a PNG image on a single PDF page,
// scaled to fit inside the margins.
func exportPDF(path string, img *paint.Pixmap) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.ToImage()); err != nil {
		return err
	}

	orientation := "P"
	if img.Width() > img.Height() {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("canvas", opts, &buf)

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	availW := pageW - left - right
	availH := pageH - top - bottom
	scale := math.Min(availW/float64(img.Width()), availH/float64(img.Height()))
	w := float64(img.Width()) * scale
	h := float64(img.Height()) * scale
	pdf.ImageOptions("canvas", left+(availW-w)/2, top, w, h, false, opts, 0, "")

	return pdf.OutputFileAndClose(path)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
