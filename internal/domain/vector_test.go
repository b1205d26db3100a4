package domain

import (
	"math"
	"testing"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8}

	if got := CosineSimilarity(v, v); math.Abs(got-1) > 1e-9 {
		t.Fatalf("similarity of identical vectors = %f, want 1", got)
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	if got := CosineSimilarity(a, b); math.Abs(got) > 1e-9 {
		t.Fatalf("similarity of orthogonal vectors = %f, want 0", got)
	}
}

func TestCosineSimilarityOpposite(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}

	if got := CosineSimilarity(a, b); math.Abs(got+1) > 1e-9 {
		t.Fatalf("similarity of opposite vectors = %f, want -1", got)
	}
}

func TestCosineSimilarityTruncatesToShorter(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{1, 0, 100, 100}

	if got := CosineSimilarity(a, b); math.Abs(got-1) > 1e-9 {
		t.Fatalf("similarity with truncation = %f, want 1", got)
	}
}

func TestCosineSimilarityZeroNorm(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}

	if got := CosineSimilarity(a, b); got != 0 {
		t.Fatalf("similarity with zero-norm vector = %f, want 0", got)
	}
}

func TestCosineSimilarityEmpty(t *testing.T) {
	if got := CosineSimilarity(nil, []float32{1}); got != 0 {
		t.Fatalf("similarity with empty vector = %f, want 0", got)
	}
}
