package cgin

import (
	"image"
	"image/draw"
	// png is the format textures ship in.
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// TextureConfig converts src to tightly packed RGBA8 pixels ready to upload as a
// sampled image.
func TextureConfig(src image.Image) ImageConfig {
	b := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	}
	return ImageConfig{
		Extent: vk.Extent2D{Width: uint32(b.Dx()), Height: uint32(b.Dy())},
		Format: vk.FormatR8g8b8a8Unorm,
		Pixels: rgba.Pix,
	}
}

// LoadTexture decodes the image file at path into an ImageConfig.
func LoadTexture(path string) (ImageConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageConfig{}, errors.Wrap(err, "open texture")
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return ImageConfig{}, errors.Wrapf(err, "decode texture %s", path)
	}
	return TextureConfig(src), nil
}
