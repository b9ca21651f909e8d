package thumbnail

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDraw_Dimensions(t *testing.T) {
	out := Draw(solid(40, 60, color.NRGBA{R: 255, A: 255}), 10)
	lines := strings.Split(out, "\n")
	// 10 wide, 15 tall rounded to 16 pixel rows, 8 text lines
	assert.Len(t, lines, 8)
	for _, l := range lines {
		assert.Equal(t, 10, strings.Count(l, halfBlock))
	}
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#FF8000", hex(color.NRGBA{R: 255, G: 128, A: 255}))
}

func TestRender_FetchesAndDecodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(8, 8, color.White)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	r := New(srv.Client())
	img, err := r.Fetch(context.Background(), srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	out := r.Render(context.Background(), srv.URL+"/cover.png", 4)
	assert.Contains(t, out, halfBlock)
}

func TestRender_FailureIsPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	r := New(srv.Client())
	_, err := r.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, r.Render(context.Background(), srv.URL, 12), "Kein Bild")
	assert.Contains(t, r.Render(context.Background(), "", 12), "Kein Bild")
}
