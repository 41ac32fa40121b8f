package overlay

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Renderer paints recognition geometry onto source images.
//
// Build one with New and reuse it across requests; rendering never modifies
// the source image, every call works on a fresh copy.
type Renderer struct {
	opts     Options
	stroke   color.RGBA
	contrast color.RGBA

	face font.Face
	mu   sync.Mutex // the face keeps internal scratch buffers
}

// New creates a Renderer with the given options.
//
// An empty StrokeColor and a non-positive StrokeWidth are filled with the
// package defaults. Returns an error when the stroke color is not a valid
// hex string or the embedded label font cannot be prepared.
func New(opts Options) (*Renderer, error) {
	if opts.StrokeColor == "" {
		opts.StrokeColor = DefaultStrokeColor
	}
	if opts.StrokeWidth <= 0 {
		opts.StrokeWidth = DefaultStrokeWidth
	}

	stroke, err := colorful.Hex(opts.StrokeColor)
	if err != nil {
		return nil, fmt.Errorf("invalid stroke color %q: %w", opts.StrokeColor, err)
	}

	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    13,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build label face: %w", err)
	}

	sr, sg, sb := stroke.RGB255()
	return &Renderer{
		opts:     opts,
		stroke:   color.RGBA{sr, sg, sb, 255},
		contrast: labelTextColor(stroke),
		face:     face,
	}, nil
}

// Options returns the effective options after default filling.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render paints every line's bounding polygon onto a copy of src.
//
// Polygons are drawn in the order received; where outlines overlap, later
// lines paint over earlier ones. Polygons with fewer than two vertices are
// counted in LinesSkipped and otherwise ignored. Outlines extending past
// the image edge are clipped. Rendering the same inputs twice produces
// byte-identical output.
func (r *Renderer) Render(src image.Image, lines []Line) *Result {
	base := imaging.Clone(src)
	layer := image.NewRGBA(base.Bounds())

	result := &Result{}
	for _, line := range lines {
		if len(line.Polygon) < 2 {
			result.LinesSkipped++
			continue
		}
		r.drawPolygon(layer, line.Polygon)
		result.LinesDrawn++
	}

	if r.opts.DrawLabels {
		r.mu.Lock()
		for _, line := range lines {
			if len(line.Polygon) < 2 || line.Text == "" {
				continue
			}
			r.drawLabel(layer, line.Polygon[0], line.Text)
		}
		r.mu.Unlock()
	}

	result.Image = blend.Normal(base, layer)
	return result
}

// drawPolygon outlines a closed polygon by connecting consecutive vertices
// and closing the shape back to the first one.
func (r *Renderer) drawPolygon(layer *image.RGBA, polygon []image.Point) {
	for i := range polygon {
		from := polygon[i]
		to := polygon[(i+1)%len(polygon)]
		r.drawSegment(layer, from, to)
	}
}

// drawSegment draws a straight stroke between two points using Bresenham
// stepping, stamping a StrokeWidth square at every step.
func (r *Renderer) drawSegment(layer *image.RGBA, from, to image.Point) {
	dx := abs(to.X - from.X)
	dy := -abs(to.Y - from.Y)
	sx := 1
	if from.X > to.X {
		sx = -1
	}
	sy := 1
	if from.Y > to.Y {
		sy = -1
	}

	x, y := from.X, from.Y
	e := dx + dy
	for {
		r.stamp(layer, x, y)
		if x == to.X && y == to.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

// stamp fills a StrokeWidth square centered on (x, y). Set discards pixels
// outside the layer, which clips strokes at the image edge.
func (r *Renderer) stamp(layer *image.RGBA, x, y int) {
	w := r.opts.StrokeWidth
	for dy := -w / 2; dy < w-w/2; dy++ {
		for dx := -w / 2; dx < w-w/2; dx++ {
			layer.Set(x+dx, y+dy, r.stroke)
		}
	}
}

// drawLabel paints the recognized text on a filled tag anchored at the
// polygon's first vertex. The tag sits above the outline when there is
// room and drops below it otherwise.
func (r *Renderer) drawLabel(layer *image.RGBA, anchor image.Point, text string) {
	metrics := r.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	width := font.MeasureString(r.face, text).Ceil()

	const pad = 2
	baseline := anchor.Y - r.opts.StrokeWidth - descent - pad
	if baseline-ascent-pad < layer.Bounds().Min.Y {
		baseline = anchor.Y + r.opts.StrokeWidth + ascent + pad
	}

	bg := image.Rect(
		anchor.X-pad,
		baseline-ascent-pad,
		anchor.X+width+pad,
		baseline+descent+pad,
	).Intersect(layer.Bounds())

	for y := bg.Min.Y; y < bg.Max.Y; y++ {
		for x := bg.Min.X; x < bg.Max.X; x++ {
			layer.Set(x, y, r.stroke)
		}
	}

	d := &font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(r.contrast),
		Face: r.face,
		Dot:  fixed.P(anchor.X, baseline),
	}
	d.DrawString(text)
}

// labelTextColor picks black or white label text, whichever stays readable
// against the stroke color used for the tag background.
func labelTextColor(c colorful.Color) color.RGBA {
	_, _, l := c.Hcl()
	if l > 0.6 {
		return color.RGBA{0, 0, 0, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
