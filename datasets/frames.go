package datasets

import (
	"fmt"
	"image"
	"image/color"
	"os"

	// Decoder registration for the raster formats the image cutouts come in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageShape is the expected height and width of a single detection cutout.
type ImageShape struct {
	Height int
	Width  int
}

// DefaultImageShape returns the 30x30 cutout size the survey pipeline emits.
func DefaultImageShape() ImageShape {
	return ImageShape{Height: 30, Width: 30}
}

// shapeMismatchError reports a frame that decoded fine but whose dimensions
// differ from the configured cutout shape.
type shapeMismatchError struct {
	gotHeight, gotWidth   int
	wantHeight, wantWidth int
}

func (e *shapeMismatchError) Error() string {
	return fmt.Sprintf("frame shape %dx%d does not match expected %dx%d",
		e.gotHeight, e.gotWidth, e.wantHeight, e.wantWidth)
}

// loadFrame reads one image file, converts it to single-channel grayscale and
// returns it as a flat row-major float32 buffer of length Height*Width.
//
// Normalization: each pixel is reduced to its 8-bit grayscale luminance and
// scaled by 1/255, so values land in [0, 1]. A missing file is returned as
// the os.Open error so callers can distinguish it with errors.Is(err,
// fs.ErrNotExist); a wrong-sized frame comes back as a *shapeMismatchError.
func loadFrame(path string, shape ImageShape) ([]float32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dy() != shape.Height || bounds.Dx() != shape.Width {
		return nil, &shapeMismatchError{
			gotHeight:  bounds.Dy(),
			gotWidth:   bounds.Dx(),
			wantHeight: shape.Height,
			wantWidth:  shape.Width,
		}
	}

	buf := make([]float32, 0, shape.Height*shape.Width)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			buf = append(buf, float32(gray.Y)/255.0)
		}
	}

	return buf, nil
}
