// Package thumbnail renders cover images as terminal half-block art.
package thumbnail

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/gift"
	"github.com/pkg/errors"
)

const (
	halfBlock = "▀"

	// covers are small; anything larger is not a thumbnail
	maxImageBytes = 8 << 20
)

// Renderer fetches and draws cover images.
type Renderer struct {
	client *http.Client
}

func New(client *http.Client) *Renderer {
	if client == nil {
		client = util.NewBackendClient(0)
	}
	return &Renderer{client: client}
}

// Fetch downloads and decodes the image at url.
func (r *Renderer) Fetch(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, errors.New("no thumbnail url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build thumbnail request")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch thumbnail")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch thumbnail: status %d", resp.StatusCode)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, errors.Wrap(err, "decode thumbnail")
	}
	return img, nil
}

// Render fetches url and draws it width cells wide. Failures yield a
// placeholder box of the same size, never an error.
func (r *Renderer) Render(ctx context.Context, url string, width int) string {
	defer util.StartTimer("thumbnail.render").Stop()
	img, err := r.Fetch(ctx, url)
	if err != nil {
		util.Debug("thumbnail unavailable", "url", url, "error", err)
		return Placeholder(width, width/2)
	}
	return Draw(img, width)
}

// Draw scales img to width columns and renders two pixel rows per line,
// the upper pixel as foreground and the lower as background.
func Draw(img image.Image, width int) string {
	if width < 1 {
		width = 1
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return Placeholder(width, 1)
	}
	height := b.Dy() * width / b.Dx()
	if height < 2 {
		height = 2
	}
	height += height % 2

	g := gift.New(gift.Resize(width, height, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, img)

	var sb strings.Builder
	db := dst.Bounds()
	for y := db.Min.Y; y < db.Max.Y; y += 2 {
		for x := db.Min.X; x < db.Max.X; x++ {
			top := hex(dst.At(x, y))
			bottom := top
			if y+1 < db.Max.Y {
				bottom = hex(dst.At(x, y+1))
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render(halfBlock))
		}
		if y+2 < db.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

var placeholderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#636E72")).
	Foreground(lipgloss.Color("#636E72")).
	Align(lipgloss.Center, lipgloss.Center)

// Placeholder is drawn in place of images that cannot be loaded.
func Placeholder(width, height int) string {
	if width < 6 {
		width = 6
	}
	if height < 3 {
		height = 3
	}
	return placeholderStyle.
		Width(width - 2).
		Height(height - 2).
		Render("Kein Bild")
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}
