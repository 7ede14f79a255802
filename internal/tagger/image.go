package tagger

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// prepareImage decodes the frame at path, pads it to a white square, resizes
// to target x target, and returns the pixel data as float32 BGR in HWC
// order, which is what the tagger model expects.
func prepareImage(path string, target int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}

	bounds := src.Bounds()
	maxDim := bounds.Dx()
	if bounds.Dy() > maxDim {
		maxDim = bounds.Dy()
	}
	if maxDim == 0 {
		return nil, fmt.Errorf("decode frame %s: empty image", path)
	}

	padded := image.NewRGBA(image.Rect(0, 0, maxDim, maxDim))
	draw.Draw(padded, padded.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	offset := image.Pt((maxDim-bounds.Dx())/2, (maxDim-bounds.Dy())/2)
	draw.Draw(padded, bounds.Add(offset).Sub(bounds.Min), src, bounds.Min, draw.Over)

	scaled := padded
	if maxDim != target {
		scaled = image.NewRGBA(image.Rect(0, 0, target, target))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), padded, padded.Bounds(), xdraw.Over, nil)
	}

	data := make([]float32, 0, target*target*3)
	for y := 0; y < target; y++ {
		for x := 0; x < target; x++ {
			i := scaled.PixOffset(x, y)
			r, g, b := scaled.Pix[i], scaled.Pix[i+1], scaled.Pix[i+2]
			data = append(data, float32(b), float32(g), float32(r))
		}
	}
	return data, nil
}
