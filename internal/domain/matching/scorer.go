package matching

import (
	"errors"
	"math"
)

var (
	ErrEmptyVector    = errors.New("empty embedding vector")
	ErrZeroVector     = errors.New("zero-magnitude embedding vector")
	ErrLengthMismatch = errors.New("embedding vectors have different lengths")
)

// Score computes the cosine similarity between a job embedding and a
// candidate embedding, mapped linearly from [-1,1] onto a 0-100 scale.
// Only direction matters; magnitude is normalized away. A zero vector is an
// input error, not a zero score.
func Score(jobVec, candVec []float64) (float64, error) {
	if len(jobVec) == 0 || len(candVec) == 0 {
		return 0, ErrEmptyVector
	}
	if len(jobVec) != len(candVec) {
		return 0, ErrLengthMismatch
	}

	var dot, jobNorm, candNorm float64
	for i := range jobVec {
		dot += jobVec[i] * candVec[i]
		jobNorm += jobVec[i] * jobVec[i]
		candNorm += candVec[i] * candVec[i]
	}
	if jobNorm == 0 || candNorm == 0 {
		return 0, ErrZeroVector
	}

	cos := dot / (math.Sqrt(jobNorm) * math.Sqrt(candNorm))
	// Float accumulation can nudge the cosine slightly outside [-1,1].
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}

	return (cos + 1) / 2 * 100, nil
}
