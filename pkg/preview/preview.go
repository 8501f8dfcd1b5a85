package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/df07/go-sphere-raytracer/pkg/output"
)

// CellSetter is the part of a terminal screen the preview draws on
type CellSetter interface {
	SetCell(x, y int, c *uv.Cell)
}

// CellSize returns the terminal area, in cells, that an image of the given
// pixel size occupies. Each cell holds two pixel rows.
func CellSize(width, height int) (int, int) {
	return width, (height + 1) / 2
}

// Draw converts img to half-block cells and draws them on the screen.
// The image should be twice as tall as the area.
func Draw(scr CellSetter, img image.Image, area uv.Rectangle) {
	// Each terminal row represents 2 image rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color
	b := img.Bounds()

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := b.Min.Y + (row-area.Min.Y)*2
		botY := topY + 1
		if topY >= b.Max.Y {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := b.Min.X + col - area.Min.X
			if x >= b.Max.X {
				break
			}

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: pixel(img, x, topY),
					Bg: pixel(img, x, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// pixel returns the opaque color at (x, y), or nil outside the image
func pixel(img image.Image, x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return nil
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
}

// Show displays img in the terminal's alternate screen until a quit key
// (q, escape, ctrl+c) is pressed or ctx is cancelled. The image is scaled
// down to fit and redrawn when the terminal is resized.
func Show(ctx context.Context, img image.Image) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	draw := func() error {
		fitted := output.Fit(img, width, height*2)
		cols, rows := CellSize(fitted.Bounds().Dx(), fitted.Bounds().Dy())
		Draw(term, fitted, uv.Rect(0, 0, cols, rows))
		return term.Display()
	}
	if err := draw(); err != nil {
		return fmt.Errorf("draw preview: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-term.Events():
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				if err := draw(); err != nil {
					return fmt.Errorf("draw preview: %w", err)
				}
			case uv.KeyPressEvent:
				if ev.MatchString("q", "escape", "ctrl+c") {
					return nil
				}
			}
		}
	}
}
