package output

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

const jpegQuality = 95

// Save writes img to filename, picking the encoder from the file extension
// (png, jpg, gif, tif, bmp). Parent directories are created as needed.
func Save(img image.Image, filename string) error {
	if _, err := imaging.FormatFromFilename(filename); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	if err := ensureDir(filename); err != nil {
		return err
	}
	if err := imaging.Save(img, filename, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// Fit scales img down to fit inside maxWidth x maxHeight, keeping its aspect ratio.
// Images that already fit are returned at their original size.
func Fit(img image.Image, maxWidth, maxHeight int) *image.NRGBA {
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

// StatsLines formats render statistics for the overlay
func StatsLines(sceneName string, stats renderer.RenderStats) []string {
	return []string{
		sceneName,
		fmt.Sprintf("%d px  %d spp  depth %d", stats.TotalPixels, int(stats.AverageSamples), stats.MaxDepth),
		fmt.Sprintf("%v", stats.Duration.Round(time.Millisecond)),
	}
}

// Annotate returns a copy of img with lines of text drawn on a translucent
// panel in the bottom-left corner
func Annotate(img image.Image, lines []string) image.Image {
	dc := gg.NewContextForImage(img)
	if len(lines) == 0 {
		return dc.Image()
	}

	const pad = 4.0
	lineHeight := dc.FontHeight() * 1.4
	textWidth := 0.0
	for _, line := range lines {
		if w, _ := dc.MeasureString(line); w > textWidth {
			textWidth = w
		}
	}

	panelWidth := textWidth + pad*2
	panelHeight := lineHeight*float64(len(lines)) + pad*2
	top := float64(dc.Height()) - panelHeight

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, top, panelWidth, panelHeight)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for i, line := range lines {
		dc.DrawStringAnchored(line, pad, top+pad+lineHeight*float64(i), 0, 1)
	}
	return dc.Image()
}

// SaveGIF writes frames as a looping animated GIF.
// delay is in 100ths of a second (e.g., 5 => 20 fps).
func SaveGIF(frames []image.Image, filename string, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("%s: no frames to write", filename)
	}

	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: 0,
	}
	for _, frame := range frames {
		// Quantize to paletted for GIF
		pimg := image.NewPaletted(frame.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), frame, frame.Bounds().Min)

		out.Image = append(out.Image, pimg)
		out.Delay = append(out.Delay, delay)
	}

	if err := ensureDir(filename); err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create gif: %w", err)
	}
	return writeGIF(f, out)
}

// writeGIF encodes the animation to w and closes it
func writeGIF(w io.WriteCloser, out *gif.GIF) error {
	if err := gif.EncodeAll(w, out); err != nil {
		w.Close()
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close gif: %w", err)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
