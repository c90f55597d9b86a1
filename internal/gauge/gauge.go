// Package gauge renders the churn-probability dial shown next to a single
// prediction result.
package gauge

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/yungbote/churnboard/internal/churn"
)

const (
	DefaultSize = 320
	MinSize     = 64
	MaxSize     = 1024
)

var (
	trackColor = color.NRGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF}
	stayColor  = color.NRGBA{R: 0x16, G: 0xA3, B: 0x4A, A: 0xFF}
	exitColor  = color.NRGBA{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF}
	inkColor   = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xFF}
)

// Renderer draws gauges with one parsed font. Renders are serialized since
// the cached truetype faces are not safe for concurrent use.
type Renderer struct {
	font *truetype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewRenderer loads the TTF at fontPath, or the bundled Go Bold face when the
// path is empty.
func NewRenderer(fontPath string) (*Renderer, error) {
	raw := gobold.TTF
	if p := strings.TrimSpace(fontPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read gauge font: %w", err)
		}
		raw = b
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse gauge font: %w", err)
	}
	return &Renderer{font: f, faces: map[float64]font.Face{}}, nil
}

// Render draws a half-dial PNG for r. size is the image width; height is
// derived from it.
func (g *Renderer) Render(r churn.PredictionResult, size int) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	size = min(max(size, MinSize), MaxSize)
	w := float64(size)
	h := math.Round(w * 0.62)

	p := r.Probability
	if math.IsNaN(p) {
		p = 0
	}
	p = min(max(p, 0), 1)

	dc := gg.NewContext(size, int(h))
	cx, cy := w/2, h*0.86
	radius := w * 0.40
	stroke := w * 0.09

	dc.SetLineCapRound()
	dc.SetLineWidth(stroke)
	dc.SetColor(trackColor)
	dc.DrawArc(cx, cy, radius, math.Pi, 2*math.Pi)
	dc.Stroke()

	fill := stayColor
	if r.Exits() {
		fill = exitColor
	}
	end := math.Pi + p*math.Pi
	if p > 0 {
		dc.SetColor(fill)
		dc.DrawArc(cx, cy, radius, math.Pi, end)
		dc.Stroke()
	}

	dc.SetLineWidth(w * 0.012)
	dc.SetColor(inkColor)
	nx, ny := cx+math.Cos(end)*radius*0.78, cy+math.Sin(end)*radius*0.78
	dc.DrawLine(cx, cy, nx, ny)
	dc.Stroke()
	dc.DrawCircle(cx, cy, w*0.025)
	dc.Fill()

	dc.SetFontFace(g.face(w * 0.11))
	dc.DrawStringAnchored(churn.Percent(p), cx, cy-radius*0.42, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode gauge png: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Renderer) face(points float64) font.Face {
	points = math.Round(points)
	if f, ok := g.faces[points]; ok {
		return f
	}
	f := truetype.NewFace(g.font, &truetype.Options{Size: points, DPI: 72, Hinting: font.HintingNone})
	g.faces[points] = f
	return f
}
