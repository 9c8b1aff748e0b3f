package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is implemented by every control the panel can host.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
}

// Panel stacks widgets vertically with labels, in a translucent box in a
// corner of the screen.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string

	widgets []Widget
	labels  []string
	nextY   float64

	bgColor     color.RGBA
	borderColor color.RGBA
}

const (
	panelMargin   = 10.0
	sliderPitch   = 32.0 // label line plus the slider bar
	checkboxPitch = 24.0
)

// NewPanel creates an empty panel at the given screen position.
func NewPanel(x, y, width float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      30,
		Title:       title,
		nextY:       y + 25,
		bgColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		borderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSlider appends a labeled slider and returns it so the caller can
// poll its Value every frame.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+panelMargin, p.nextY+15, p.Width-2*panelMargin, label, min, max, value)
	p.widgets = append(p.widgets, s)
	p.labels = append(p.labels, label)
	p.nextY += sliderPitch
	p.Height = p.nextY - p.Y + panelMargin
	return s
}

// AddCheckbox appends a labeled checkbox and returns it.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+panelMargin, p.nextY, label, value)
	p.widgets = append(p.widgets, c)
	p.labels = append(p.labels, label)
	p.nextY += checkboxPitch
	p.Height = p.nextY - p.Y + panelMargin
	return c
}

// Update forwards input handling to every widget.
func (p *Panel) Update() {
	for _, w := range p.widgets {
		w.Update()
	}
}

// Draw renders the panel box, the labels and the widgets.
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.bgColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.borderColor, true)

	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+panelMargin), int(p.Y+5))

	for i, w := range p.widgets {
		switch w := w.(type) {
		case *Slider:
			label := fmt.Sprintf("%s: %.4g", p.labels[i], w.Value)
			ebitenutil.DebugPrintAt(screen, label, int(w.X), int(w.Y-15))
		case *Checkbox:
			ebitenutil.DebugPrintAt(screen, p.labels[i], int(w.X+w.Size+6), int(w.Y))
		}
		w.Draw(screen)
	}
}

// Contains reports whether a screen point falls inside the panel. The
// frontend uses it to keep canvas clicks from leaking into the panel.
func (p *Panel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}
