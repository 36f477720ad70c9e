package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// This package builds a labeled image-sequence dataset for a binary mover
// classifier: real moving-object detections versus bogus ones.
//
// Pipeline, three stages, each consuming its predecessor's full output:
//
//  1. ReadMoverLookup reads the confirmed and rejected lookup CSVs, injects
//     a binary label per table and groups the pooled rows by mover id.
//  2. BuildDataset loads the four grayscale frames of every mover, validates
//     count and shape, and stacks each valid sequence into one
//     (1, 1, 4H, W) sample. Movers failing validation are skipped with a
//     diagnostic on standard output.
//  3. Split partitions the dataset into a shuffling, batching training
//     loader and a plain indexable validation subset.
//
// Notes on gomlx tensors: samples and labels are kept as contiguous float32
// buffers along with shape metadata; conversion into gomlx tensors is a
// small, well-defined step via the ToGomlxTensors methods, keeping the rest
// of the code independent of any particular gomlx helper constructor.

// Dataset is the minimal sample-access interface shared by MoverDataset and
// the subsets produced by Split. Training code that only needs indexed reads
// can accept this instead of the concrete types.
type Dataset interface {
	Len() int
	Get(i int) (sample []float32, label float32, err error)
}

// TrainDataset is the surface a gomlx training loop drives: batches as
// tensors via Yield until io.EOF, then Restart for the next epoch.
// DataLoader implements it.
type TrainDataset interface {
	Name() string
	Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error)
	Restart() error
}
