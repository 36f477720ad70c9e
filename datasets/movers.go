package datasets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// FramesPerMover is the length of a valid detection sequence. Movers with any
// other number of lookup rows are skipped entirely.
const FramesPerMover = 4

// MoverDataset holds the stacked frame sequences of every mover that passed
// validation, as one contiguous float32 buffer plus per-sample labels.
//
// Each sample is the mover's four H x W grayscale frames laid out back to
// back along the height axis, i.e. logical shape (1, 1, 4H, W). The flat
// buffer stores samples consecutively, each occupying 4*H*W floats.
type MoverDataset struct {
	samples []float32
	labels  []float32
	shape   ImageShape
}

// BuildDataset materializes a MoverGroups grouping into a dataset of stacked
// four-frame samples plus the list of mover ids that survived validation,
// aligned with the dataset's sample order.
//
// Movers are processed in sorted id order. A mover is skipped entirely, with
// a diagnostic on standard output, when its group does not have exactly four
// rows, when any of its four images is missing or unreadable, or when any
// frame's dimensions differ from shape. If no mover survives, an error is
// returned rather than an empty dataset.
func BuildDataset(groups *MoverGroups, imageDir string, shape ImageShape) (*MoverDataset, []string, error) {
	return buildDataset(os.Stdout, groups, imageDir, shape)
}

func buildDataset(w io.Writer, groups *MoverGroups, imageDir string, shape ImageShape) (*MoverDataset, []string, error) {
	ds := &MoverDataset{shape: shape}
	var moverIDs []string

	sampleLen := FramesPerMover * shape.Height * shape.Width
	for _, moverID := range groups.IDs() {
		rows := groups.Rows(moverID)

		// Ignore sequences that aren't 4 images long.
		if len(rows) != FramesPerMover {
			fmt.Fprintf(w, "Skipping %s sequence with length: %d\n", moverID, len(rows))
			continue
		}

		frames := make([]float32, 0, sampleLen)
		complete := true
		for _, row := range rows {
			imagePath := filepath.Join(imageDir, row.FileName)
			frame, err := loadFrame(imagePath, shape)
			if err != nil {
				var shapeErr *shapeMismatchError
				switch {
				case errors.Is(err, fs.ErrNotExist):
					fmt.Fprintf(w, "Image of %s not found: %s\n", moverID, imagePath)
				case errors.As(err, &shapeErr):
					fmt.Fprintf(w, "Image of %s has wrong shape: %s\n", moverID, shapeErr)
				default:
					fmt.Fprintf(w, "Image of %s unreadable: %v\n", moverID, err)
				}
				complete = false
				break
			}
			// Appending frame after frame stacks the sequence along the
			// height axis: (1,1,H,W) x4 -> (1,1,4H,W).
			frames = append(frames, frame...)
		}
		if !complete {
			// All-or-nothing: a mover with any bad frame contributes no sample.
			continue
		}

		ds.samples = append(ds.samples, frames...)
		ds.labels = append(ds.labels, rows[0].Label)
		moverIDs = append(moverIDs, moverID)
	}

	if len(moverIDs) == 0 {
		return nil, nil, fmt.Errorf("no movers survived filtering; nothing to assemble into a dataset")
	}

	return ds, moverIDs, nil
}

// Len returns the number of samples in the dataset.
func (d *MoverDataset) Len() int {
	return len(d.labels)
}

// Shape returns the per-frame cutout shape the dataset was built with.
func (d *MoverDataset) Shape() ImageShape {
	return d.shape
}

// SampleLen returns the number of floats in one stacked sample (4*H*W).
func (d *MoverDataset) SampleLen() int {
	return FramesPerMover * d.shape.Height * d.shape.Width
}

// Get returns the stacked sample buffer and label at index i. The returned
// slice aliases the dataset's backing buffer and must not be modified.
func (d *MoverDataset) Get(i int) ([]float32, float32, error) {
	if i < 0 || i >= d.Len() {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", i, d.Len())
	}
	n := d.SampleLen()
	return d.samples[i*n : (i+1)*n], d.labels[i], nil
}

// ToGomlxTensors converts the whole dataset into a pair of gomlx tensors:
// inputs shaped (N, 1, 4H, W) and labels shaped (N, 1, 1).
func (d *MoverDataset) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	if d.Len() == 0 {
		return nil, nil, fmt.Errorf("cannot convert empty dataset to tensors")
	}

	stackedH := FramesPerMover * d.shape.Height
	width := d.shape.Width

	inputs := make([][][][]float32, d.Len())
	labels := make([][][]float32, d.Len())
	for i := range d.Len() {
		sample, label, err := d.Get(i)
		if err != nil {
			return nil, nil, err
		}
		channel := make([][]float32, stackedH)
		for y := range stackedH {
			channel[y] = sample[y*width : (y+1)*width]
		}
		inputs[i] = [][][]float32{channel}
		labels[i] = [][]float32{{label}}
	}

	return tensors.FromAnyValue(inputs), tensors.FromAnyValue(labels), nil
}
