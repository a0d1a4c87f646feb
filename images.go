package sharegate

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	cardWidth    = 1200
	cardHeight   = 630
	jpegQuality  = 80
	maxImageSize = 10 << 20 // 10MB fetch cap
)

// renderCardImage decodes src and center-crops/scales it to the 1200x630
// card size as JPEG. Crawlers reject images outside these dimensions, so
// non-Cloudinary sources are normalized here instead of at the CDN.
func renderCardImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty image")
	}

	// Center-crop to the card aspect ratio before scaling.
	crop := bounds
	if w*cardHeight > h*cardWidth {
		cw := h * cardWidth / cardHeight
		x0 := bounds.Min.X + (w-cw)/2
		crop = image.Rect(x0, bounds.Min.Y, x0+cw, bounds.Max.Y)
	} else if w*cardHeight < h*cardWidth {
		ch := w * cardHeight / cardWidth
		y0 := bounds.Min.Y + (h-ch)/2
		crop = image.Rect(bounds.Min.X, y0, bounds.Max.X, y0+ch)
	}

	dst := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// handleCardImage proxies a remote image resized to card dimensions.
// GET /api/og/card?src=<url>
func (a *App) handleCardImage(c echo.Context) error {
	src := c.QueryParam("src")
	normalized := NormalizeImageURL(src, a.Config.URL)
	if normalized == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid image url")
	}

	key := a.cache.Key("card", normalized)
	if v := a.cache.Get(key); v != nil {
		return c.Blob(http.StatusOK, "image/jpeg", v.([]byte))
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, normalized, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid image url")
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "image fetch failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return echo.NewHTTPError(http.StatusBadGateway, "image fetch failed")
	}

	data, err := renderCardImage(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "unsupported image")
	}

	a.cache.Set(key, data)
	c.Response().Header().Set("Cache-Control", "public, s-maxage=86400")
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
