package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/paint"
)

// sceneFile is the YAML document paintdemo replays onto a canvas: named
// brushes plus a layer stack with recorded strokes, bottom layer first.
//
//	title: Sunset sketch
//	width: 800
//	height: 600
//	background: "#27283b"
//	brushes:
//	  sketcher:
//	    size: 22
//	    spacing: 0.08
//	    hardness: 0.85
//	layers:
//	  - name: Sky
//	    strokes:
//	      - brush: sketcher
//	        color: "#ff9a56"
//	        points: [[100, 80, 0.3], [220, 90, 0.8], [380, 60, 1.0]]
type sceneFile struct {
	Title      string               `yaml:"title"`
	Width      int                  `yaml:"width"`
	Height     int                  `yaml:"height"`
	Background string               `yaml:"background"`
	Seed       *int64               `yaml:"seed"`
	Brushes    map[string]brushSpec `yaml:"brushes"`
	Layers     []layerSpec          `yaml:"layers"`
}

type brushSpec struct {
	Size       float64    `yaml:"size"`
	Opacity    *float64   `yaml:"opacity"`
	Flow       *float64   `yaml:"flow"`
	Blend      string     `yaml:"blend"`
	Spacing    float64    `yaml:"spacing"`
	Hardness   *float64   `yaml:"hardness"`
	Streamline float64    `yaml:"streamline"`
	Jitter     float64    `yaml:"jitter"`
	Scatter    float64    `yaml:"scatter"`
	Falloff    float64    `yaml:"falloff"`
	Stamps     int        `yaml:"stamps"`
	Taper      *taperSpec `yaml:"taper"`
	HueJitter  float64    `yaml:"hue-jitter"`
	Darken     float64    `yaml:"pressure-darken"`
}

type taperSpec struct {
	Length  float64 `yaml:"length"`
	Size    float64 `yaml:"size"`
	Opacity float64 `yaml:"opacity"`
}

type layerSpec struct {
	Name      string       `yaml:"name"`
	Blend     string       `yaml:"blend"`
	Opacity   *float64     `yaml:"opacity"`
	Clipping  bool         `yaml:"clipping"`
	AlphaLock bool         `yaml:"alpha-lock"`
	Strokes   []strokeSpec `yaml:"strokes"`
}

type strokeSpec struct {
	Brush  string      `yaml:"brush"`
	Color  string      `yaml:"color"`
	Points [][]float64 `yaml:"points"` // [x, y] or [x, y, pressure]
}

// loadScene reads and validates a scene file. Missing dimensions default
// to 800x600.
func loadScene(path string) (*sceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s sceneFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.Width <= 0 {
		s.Width = 800
	}
	if s.Height <= 0 {
		s.Height = 600
	}
	if len(s.Layers) == 0 {
		return nil, fmt.Errorf("%s: scene has no layers", path)
	}
	return &s, nil
}

// build turns a brush spec into a normalized Brush, starting from the
// default round brush so unset fields keep sensible values.
func (bs brushSpec) build(name string) (paint.Brush, error) {
	b := paint.DefaultBrush()
	b.Name = name
	if bs.Size > 0 {
		b.Size = bs.Size
	}
	if bs.Opacity != nil {
		b.Opacity = *bs.Opacity
	}
	if bs.Flow != nil {
		b.Flow = *bs.Flow
	}
	if bs.Blend != "" {
		mode, ok := paint.ParseBlendMode(bs.Blend)
		if !ok {
			return b, fmt.Errorf("brush %q: unknown blend mode %q", name, bs.Blend)
		}
		b.Blend = mode
	}
	if bs.Spacing > 0 {
		b.Spacing = bs.Spacing
	}
	if bs.Hardness != nil {
		b.Shape = paint.DiscShape(*bs.Hardness)
	}
	b.Streamline = bs.Streamline
	b.Jitter = bs.Jitter
	b.Scatter = bs.Scatter
	b.Falloff = bs.Falloff
	if bs.Stamps > 0 {
		b.StampCount = bs.Stamps
	}
	if bs.Taper != nil {
		b.Taper = paint.TaperSettings{
			Length:  bs.Taper.Length,
			Size:    bs.Taper.Size,
			Opacity: bs.Taper.Opacity,
		}
	}
	b.Dynamics.HueJitter = bs.HueJitter
	b.Dynamics.PressureDarken = bs.Darken
	b.Dynamics.PerStamp = true
	return b.Normalize(), nil
}

// replayScene drives the canvas through the scene: the bottom scene layer
// reuses the canvas's starting layer, the rest are added on top.
func replayScene(c *paint.Canvas, s *sceneFile) error {
	brushes := make(map[string]paint.Brush, len(s.Brushes))
	for name, spec := range s.Brushes {
		b, err := spec.build(name)
		if err != nil {
			return err
		}
		brushes[name] = b
	}

	for i, ls := range s.Layers {
		var id uuid.UUID
		if i == 0 {
			id = c.ActiveLayerID()
		} else {
			var err error
			if id, err = c.AddLayer(); err != nil {
				return fmt.Errorf("add layer %q: %w", ls.Name, err)
			}
		}
		if err := applyLayerSpec(c, id, ls); err != nil {
			return err
		}
		for j, st := range ls.Strokes {
			b := paint.DefaultBrush()
			if st.Brush != "" {
				var ok bool
				if b, ok = brushes[st.Brush]; !ok {
					return fmt.Errorf("layer %q stroke %d: unknown brush %q", ls.Name, j, st.Brush)
				}
			}
			if err := replayStroke(c, b, st); err != nil {
				return fmt.Errorf("layer %q stroke %d: %w", ls.Name, j, err)
			}
		}
	}
	return nil
}

func applyLayerSpec(c *paint.Canvas, id uuid.UUID, ls layerSpec) error {
	if ls.Name != "" {
		l, err := c.Layer(id)
		if err != nil {
			return err
		}
		l.Name = ls.Name
	}
	if ls.Blend != "" {
		mode, ok := paint.ParseBlendMode(ls.Blend)
		if !ok {
			return fmt.Errorf("layer %q: unknown blend mode %q", ls.Name, ls.Blend)
		}
		if err := c.SetBlendMode(id, mode); err != nil {
			return err
		}
	}
	if ls.Opacity != nil {
		if err := c.SetOpacity(id, *ls.Opacity); err != nil {
			return err
		}
	}
	if ls.Clipping {
		if _, err := c.ToggleClippingMask(id); err != nil {
			return err
		}
	}
	if ls.AlphaLock {
		if _, err := c.ToggleAlphaLock(id); err != nil {
			return err
		}
	}
	return nil
}

func replayStroke(c *paint.Canvas, b paint.Brush, st strokeSpec) error {
	if len(st.Points) == 0 {
		return nil
	}
	col := paint.Black
	if st.Color != "" {
		col = paint.Hex(st.Color)
	}

	pts := make([]paint.StrokePoint, len(st.Points))
	for i, p := range st.Points {
		if len(p) < 2 {
			return fmt.Errorf("point %d needs at least x and y", i)
		}
		sp := paint.StrokePoint{
			Pos:      paint.Pt(p[0], p[1]),
			Pressure: 0.5,
			Time:     int64(i) * 8,
		}
		if len(p) >= 3 {
			sp.Pressure = p[2]
		}
		pts[i] = sp
	}

	if err := c.BeginStroke(b, col, pts[0]); err != nil {
		return err
	}
	for _, sp := range pts[1:] {
		if err := c.ExtendStroke(sp); err != nil {
			_ = c.CancelStroke()
			return err
		}
	}
	return c.EndStroke()
}
