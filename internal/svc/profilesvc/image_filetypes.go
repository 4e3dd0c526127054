package profilesvc

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeGIF  = "image/gif"
	MIMETypeWebP = "image/webp"
	MIMETypeBMP  = "image/bmp"
	MIMETypeTIFF = "image/tiff"
)

//nolint:gochecknoglobals
var (
	imageDecoders = map[string]func(io.Reader) (image.Image, error){
		MIMETypeJPEG: jpeg.Decode,
		MIMETypePNG:  png.Decode,
		MIMETypeGIF:  gif.Decode,
		MIMETypeWebP: webp.Decode,
		MIMETypeBMP:  bmp.Decode,
		MIMETypeTIFF: tiff.Decode,
	}

	// Previews keep JPEG for photos and use PNG for everything else.
	imageEncoders = map[string]func(io.Writer, image.Image) error{
		MIMETypeJPEG: func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, nil) },
		MIMETypePNG:  png.Encode,
	}
)

func getDecoderByType(mimeType string) (func(io.Reader) (image.Image, error), error) {
	decoder, ok := imageDecoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMIMEType, mimeType)
	}

	return decoder, nil
}

// getEncoderByType returns the preview encoder for mimeType and the type it produces.
func getEncoderByType(mimeType string) (func(io.Writer, image.Image) error, string) {
	if encoder, ok := imageEncoders[mimeType]; ok {
		return encoder, mimeType
	}

	return png.Encode, MIMETypePNG
}
