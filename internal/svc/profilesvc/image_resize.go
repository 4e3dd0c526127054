package profilesvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"golang.org/x/image/draw"
)

var (
	// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
	ErrUnknownInterpolator = errors.New("unknown interpolator")

	// ErrUnsupportedMIMEType is returned when trying to process an unsupported image format.
	ErrUnsupportedMIMEType = errors.New("unsupported MIME type")
)

//nolint:gochecknoglobals
var (
	// interpolMap maps interpolator names to their implementations.
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}
)

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpol, nil
}

// thumbnail scales an image down to at most width pixels wide, keeping the
// aspect ratio, and returns the encoded thumbnail with its MIME type.
// Images narrower than width are re-encoded at their own size.
func thumbnail(data []byte, mimeType string, width int, interpolator string) ([]byte, string, error) {
	original, err := decodeImage(bytes.NewReader(data), mimeType)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	bounds := original.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, "", fmt.Errorf("decode image: %w: empty bounds", ErrUnsupportedMIMEType)
	}

	if width <= 0 || width > bounds.Dx() {
		width = bounds.Dx()
	}

	ratio := float64(width) / float64(bounds.Dx())
	height := max(1, int(float64(bounds.Dy())*ratio))

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))

	interpol, err := getInterpolatorByName(interpolator)
	if err != nil {
		return nil, "", fmt.Errorf("get interpolator: %w", err)
	}

	interpol.Scale(bitmap, bitmap.Bounds(), original, bounds, draw.Over, nil)

	var buf bytes.Buffer

	encoder, outType := getEncoderByType(mimeType)
	if err := encoder(&buf, bitmap); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), outType, nil
}

func decodeImage(reader io.Reader, mimeType string) (image.Image, error) {
	decoder, err := getDecoderByType(mimeType)
	if err != nil {
		return nil, err
	}

	img, err := decoder(reader)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mimeType, err)
	}

	return img, nil
}
