package cgin

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestTextureConfigRepacksSubImages(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 5, 5))
	src.Set(2, 3, color.NRGBA{R: 255, A: 255})
	src.Set(4, 4, color.NRGBA{B: 255, A: 255})

	cfg := TextureConfig(src)
	assert.Equal(t, vk.Extent2D{Width: 3, Height: 2}, cfg.Extent)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, cfg.Format)
	require.Len(t, cfg.Pixels, 3*2*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, cfg.Pixels[:4])
	assert.Equal(t, []byte{0, 0, 255, 255}, cfg.Pixels[len(cfg.Pixels)-4:])
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(1, 1, color.RGBA{G: 200, A: 255})
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	cfg, err := LoadTexture(path)
	require.NoError(t, err)
	assert.Equal(t, vk.Extent2D{Width: 4, Height: 4}, cfg.Extent)
	assert.Equal(t, []byte{0, 200, 0, 255}, cfg.Pixels[(1*4+1)*4:][:4])

	_, err = LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
