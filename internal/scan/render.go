package scan

import (
	"bytes"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"

	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/target"
)

// Renderer produces an encoded frame of what the camera sees of a target.
type Renderer interface {
	Render(cam Camera, p target.Person) ([]byte, error)
}

// SyntheticRenderer draws a flat PNG: ground colour plus the target as a
// coloured box sized by the camera's field of view.
type SyntheticRenderer struct {
	Width  int
	Height int
}

var groundColor = color.RGBA{R: 86, G: 110, B: 60, A: 255}

// Render implements Renderer.
func (r SyntheticRenderer) Render(cam Camera, p target.Person) ([]byte, error) {
	w, h := r.Width, r.Height
	if w <= 0 || h <= 0 {
		w, h = 64, 64
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, groundColor)
		}
	}

	dist := geom.Distance(cam.Position, p.Center())
	visible := 2 * dist * math.Tan(geom.Deg2Rad(cam.FOV)/2)
	boxH := h
	if visible > 0 {
		boxH = int(math.Round(float64(h) * p.Height / visible))
	}
	if boxH > h {
		boxH = h
	}
	boxW := boxH / 3
	if boxW < 1 {
		boxW = 1
	}
	fill := descriptionColor(p.Description)
	x0 := (w - boxW) / 2
	y0 := (h - boxH) / 2
	for y := y0; y < y0+boxH; y++ {
		for x := x0; x < x0+boxW; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func descriptionColor(desc string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(desc))
	sum := h.Sum32()
	return color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}
}
