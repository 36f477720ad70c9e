package datasets

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// SplitConfig controls how a dataset is partitioned into training and
// validation subsets.
type SplitConfig struct {
	// Train and Val are the partition fractions. They must be non-negative
	// and sum to 1.
	Train float64
	Val   float64

	// BatchSize used by the training loader.
	BatchSize int

	// Seed for the partition permutation and the loader's epoch shuffling.
	// If zero, a time-based seed is used and the split differs per run.
	Seed int64
}

// DefaultSplitConfig returns the 0.7/0.3 split with batch size 4.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{Train: 0.7, Val: 0.3, BatchSize: 4}
}

// Split partitions ds into a shuffling, batching training loader and a plain
// indexable validation subset.
//
// Sample-to-partition assignment is a random permutation; the training subset
// receives round(N * cfg.Train) samples and the validation subset the rest.
func Split(ds *MoverDataset, cfg SplitConfig) (*DataLoader, *Subset, error) {
	if cfg.Train < 0 || cfg.Val < 0 || math.Abs(cfg.Train+cfg.Val-1) > 1e-6 {
		return nil, nil, fmt.Errorf("split fractions %v/%v must be non-negative and sum to 1", cfg.Train, cfg.Val)
	}
	if cfg.BatchSize <= 0 {
		return nil, nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	n := ds.Len()
	perm := rng.Perm(n)
	trainSize := int(math.Round(float64(n) * cfg.Train))

	trainSubset := &Subset{ds: ds, indices: perm[:trainSize]}
	valSubset := &Subset{ds: ds, indices: perm[trainSize:]}

	loader := NewDataLoader(trainSubset, cfg.BatchSize, rng)
	return loader, valSubset, nil
}

// Subset is a view over a MoverDataset restricted to a fixed set of indices.
type Subset struct {
	ds      *MoverDataset
	indices []int
}

// Len returns the number of samples in the subset.
func (s *Subset) Len() int {
	return len(s.indices)
}

// Get returns the i-th sample of the subset.
func (s *Subset) Get(i int) ([]float32, float32, error) {
	if i < 0 || i >= len(s.indices) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", i, len(s.indices))
	}
	return s.ds.Get(s.indices[i])
}

// Batch is one minibatch of stacked samples, stored as contiguous buffers
// alongside the dims needed to rebuild the logical shapes.
type Batch struct {
	Inputs []float32
	Labels []float32
	Size   int
	shape  ImageShape
}

// ToGomlxTensors converts the batch into gomlx tensors shaped
// (Size, 1, 4H, W) and (Size, 1, 1).
func (b *Batch) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	if b.Size == 0 {
		return nil, nil, fmt.Errorf("cannot convert empty batch to tensors")
	}

	stackedH := FramesPerMover * b.shape.Height
	width := b.shape.Width
	sampleLen := stackedH * width

	inputs := make([][][][]float32, b.Size)
	labels := make([][][]float32, b.Size)
	for i := range b.Size {
		sample := b.Inputs[i*sampleLen : (i+1)*sampleLen]
		channel := make([][]float32, stackedH)
		for y := range stackedH {
			channel[y] = sample[y*width : (y+1)*width]
		}
		inputs[i] = [][][]float32{channel}
		labels[i] = [][]float32{{b.Labels[i]}}
	}

	return tensors.FromAnyValue(inputs), tensors.FromAnyValue(labels), nil
}

// DataLoader iterates a subset in shuffled order, grouped into batches. Each
// call to Reset reshuffles and starts a new epoch; the last batch of an epoch
// may be smaller than the configured batch size.
type DataLoader struct {
	subset    *Subset
	batchSize int
	rng       *rand.Rand
	indices   []int
	position  int
}

// NewDataLoader creates a loader over subset, already shuffled for its first
// epoch.
func NewDataLoader(subset *Subset, batchSize int, rng *rand.Rand) *DataLoader {
	indices := make([]int, subset.Len())
	for i := range indices {
		indices[i] = i
	}
	dl := &DataLoader{
		subset:    subset,
		batchSize: batchSize,
		rng:       rng,
		indices:   indices,
	}
	dl.Reset()
	return dl
}

// Len returns the number of samples the loader iterates per epoch.
func (dl *DataLoader) Len() int {
	return dl.subset.Len()
}

// NumBatches returns the number of batches per epoch.
func (dl *DataLoader) NumBatches() int {
	return (dl.subset.Len() + dl.batchSize - 1) / dl.batchSize
}

// Reset reshuffles the iteration order and starts a new epoch.
func (dl *DataLoader) Reset() {
	dl.position = 0
	dl.rng.Shuffle(len(dl.indices), func(i, j int) {
		dl.indices[i], dl.indices[j] = dl.indices[j], dl.indices[i]
	})
}

// HasNext reports whether the current epoch has more batches.
func (dl *DataLoader) HasNext() bool {
	return dl.position < len(dl.indices)
}

// Next returns the next batch of the epoch, or a nil batch once the epoch is
// exhausted.
func (dl *DataLoader) Next() (*Batch, error) {
	if dl.position >= len(dl.indices) {
		return nil, nil
	}

	batchEnd := dl.position + dl.batchSize
	if batchEnd > len(dl.indices) {
		batchEnd = len(dl.indices)
	}
	batchIndices := dl.indices[dl.position:batchEnd]
	dl.position = batchEnd

	shape := dl.subset.ds.Shape()
	sampleLen := dl.subset.ds.SampleLen()
	batch := &Batch{
		Inputs: make([]float32, 0, len(batchIndices)*sampleLen),
		Labels: make([]float32, 0, len(batchIndices)),
		Size:   len(batchIndices),
		shape:  shape,
	}
	for _, idx := range batchIndices {
		sample, label, err := dl.subset.Get(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to load sample %d: %w", idx, err)
		}
		batch.Inputs = append(batch.Inputs, sample...)
		batch.Labels = append(batch.Labels, label)
	}

	return batch, nil
}

// Name returns the name of the loader for gomlx training loops.
func (dl *DataLoader) Name() string {
	return "MoverTrainLoader"
}

// Yield returns the next batch as gomlx tensors, implementing the gomlx
// train.Dataset surface. It returns io.EOF once the epoch is exhausted; call
// Restart to begin the next epoch.
func (dl *DataLoader) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	batch, err := dl.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	if batch == nil {
		return nil, nil, nil, io.EOF
	}
	in, lab, err := batch.ToGomlxTensors()
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, []*tensors.Tensor{in}, []*tensors.Tensor{lab}, nil
}

// Restart reshuffles and resets the loader for a new epoch.
func (dl *DataLoader) Restart() error {
	dl.Reset()
	return nil
}
