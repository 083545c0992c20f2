package bulkops

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCountsAreConserved(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	result := Run(items, func(n int) error {
		if n == 3 {
			return fmt.Errorf("item %d is locked", n)
		}
		return nil
	}, nil)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 4, result.Successes)
	assert.Equal(t, 1, result.Failures)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "item 3 is locked")
	assert.Equal(t, result.Total, result.Successes+result.Failures)
}

func TestRunContinuesPastFailures(t *testing.T) {
	var processed []string

	result := Run([]string{"a", "b", "c"}, func(s string) error {
		processed = append(processed, s)
		return errors.New("always fails")
	}, nil)

	assert.Equal(t, []string{"a", "b", "c"}, processed)
	assert.Equal(t, 3, result.Failures)
	assert.Zero(t, result.Successes)
	assert.Len(t, result.Errors, result.Failures)
}

func TestRunEmptyInput(t *testing.T) {
	result := Run(nil, func(int) error { return errors.New("never called") }, nil)

	assert.Zero(t, result.Total)
	assert.Zero(t, result.Successes)
	assert.Zero(t, result.Failures)
	assert.Empty(t, result.Errors)
}

func TestRunReportsProgress(t *testing.T) {
	var seen []int
	var totals []int

	Run([]int{10, 20, 30}, func(int) error { return nil }, func(current, total int) {
		seen = append(seen, current)
		totals = append(totals, total)
	})

	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, []int{3, 3, 3}, totals)
}

func TestRunChunkedSplitsInput(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	var chunkSizes []int
	result := RunChunked(items, 10, func(chunk []int) error {
		chunkSizes = append(chunkSizes, len(chunk))
		return nil
	}, nil)

	assert.Equal(t, []int{10, 10, 5}, chunkSizes)
	assert.Equal(t, 25, result.Successes)
	assert.Zero(t, result.Failures)
}

func TestRunChunkedFailedChunkCountsPerItem(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	chunkIndex := 0
	result := RunChunked(items, 10, func(chunk []int) error {
		chunkIndex++
		if chunkIndex == 2 {
			return errors.New("downstream rejected batch")
		}
		return nil
	}, nil)

	assert.Equal(t, 25, result.Total)
	assert.Equal(t, 15, result.Successes)
	assert.Equal(t, 10, result.Failures)
	require.Len(t, result.Errors, 10)
	assert.Contains(t, result.Errors[0], "item 11:")
	assert.Contains(t, result.Errors[9], "item 20:")
	assert.Equal(t, result.Total, result.Successes+result.Failures)
}

func TestRunChunkedProgressCountsItems(t *testing.T) {
	items := make([]int, 12)
	var seen []int

	RunChunked(items, 5, func([]int) error { return nil }, func(current, total int) {
		seen = append(seen, current)
		assert.Equal(t, 12, total)
	})

	assert.Equal(t, []int{5, 10, 12}, seen)
}

func TestRunChunkedEmptyInput(t *testing.T) {
	result := RunChunked([]uint{}, 10, func([]uint) error { return errors.New("never called") }, nil)

	assert.Zero(t, result.Total)
	assert.Empty(t, result.Errors)
}
