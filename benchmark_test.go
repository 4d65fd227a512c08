package paint

import (
	"image"
	"math"
	"testing"

	"github.com/gogpu/paint/internal/parallel"
)

func benchStack(w, h, n int) []*Layer {
	layers := make([]*Layer, n)
	modes := []BlendMode{BlendNormal, BlendMultiply, BlendScreen, BlendOverlay}
	for i := range layers {
		l := NewLayer(w, h)
		data := l.Buffer().Data()
		for j := range data {
			data[j] = byte((j*7 + i*31) % 256)
		}
		l.Mode = modes[i%len(modes)]
		l.Opacity = 1 - float64(i)*0.1
		layers[i] = l
	}
	return layers
}

func BenchmarkComposite(b *testing.B) {
	const w, h = 512, 512
	layers := benchStack(w, h, 4)
	dst := NewPixmap(w, h)

	b.Run("serial", func(b *testing.B) {
		comp := NewLayerCompositor(w, h)
		b.SetBytes(int64(w * h * 4))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := comp.Composite(dst, layers); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("pooled", func(b *testing.B) {
		pool := parallel.NewWorkerPool(0)
		defer pool.Close()
		comp := NewLayerCompositor(w, h)
		comp.SetWorkerPool(pool)
		b.SetBytes(int64(w * h * 4))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := comp.Composite(dst, layers); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkCompositeIncremental(b *testing.B) {
	c := NewCanvas(1024, 768, WithWorkers(0))
	defer c.Close()
	c.CompositeAll()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.markRect(image.Rect(100, 100, 164, 164))
		c.CompositeAll()
	}
}

func BenchmarkStrokeRasterize(b *testing.B) {
	canvasBuf := NewPixmap(256, 256)
	brush := DefaultBrush()
	brush.Size = 24

	pts := make([]StrokePoint, 64)
	for i := range pts {
		t := float64(i) / float64(len(pts)-1)
		pts[i] = StrokePoint{
			Pos:      Pt(16+224*t, 128+64*math.Sin(t*4)),
			Pressure: 0.3 + 0.7*t,
			Time:     int64(i * 8),
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewStrokeRasterizer(brush, Red, canvasBuf, 42, nil)
		r.Begin(pts[0])
		for _, p := range pts[1:] {
			r.Extend(p)
		}
		r.Finish()
	}
}

func BenchmarkMergeStroke(b *testing.B) {
	const w, h = 512, 512
	comp := NewLayerCompositor(w, h)
	buf := NewPixmap(w, h)
	buf.Clear(RGBA{R: 1, G: 0.5, A: 0.8})
	region := image.Rect(0, 0, w, h)

	b.Run("normal", func(b *testing.B) {
		l := NewLayer(w, h)
		b.SetBytes(int64(w * h * 4))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := comp.MergeStroke(l, buf, region, BlendNormal, false); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("multiply", func(b *testing.B) {
		l := NewLayer(w, h)
		b.SetBytes(int64(w * h * 4))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := comp.MergeStroke(l, buf, region, BlendMultiply, false); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("alpha locked", func(b *testing.B) {
		l := NewLayer(w, h)
		l.Buffer().Clear(White)
		b.SetBytes(int64(w * h * 4))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := comp.MergeStroke(l, buf, region, BlendNormal, true); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkUndoStroke(b *testing.B) {
	c := NewCanvas(256, 256, WithWorkers(0), WithSeed(1))
	defer c.Close()

	brush := DefaultBrush()
	brush.Size = 24
	if err := c.BeginStroke(brush, Red, StrokePoint{Pos: Pt(32, 32), Pressure: 1}); err != nil {
		b.Fatal(err)
	}
	if err := c.ExtendStroke(StrokePoint{Pos: Pt(224, 224), Pressure: 1, Time: 16}); err != nil {
		b.Fatal(err)
	}
	if err := c.EndStroke(); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Undo(); err != nil {
			b.Fatal(err)
		}
		if err := c.Redo(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkThumbnail(b *testing.B) {
	c := NewCanvas(1024, 768, WithWorkers(0))
	defer c.Close()
	c.CompositeAll()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Thumbnail(256); err != nil {
			b.Fatal(err)
		}
	}
}
