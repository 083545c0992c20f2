// Package bulkops applies a single logical operation across a list of
// independent targets, isolating per-item failures. A bulk run never fails
// as a whole: the result always satisfies successes+failures == total.
package bulkops

import "fmt"

// Result aggregates the outcome of a bulk run.
type Result struct {
	Successes int      `json:"successes"`
	Failures  int      `json:"failures"`
	Errors    []string `json:"errors"`
	Total     int      `json:"total"`
}

// Progress is invoked after every item (or chunk) with the number of items
// handled so far, so a caller can render live progress.
type Progress func(current, total int)

// Run applies op to each item one at a time. A failing item is recorded and
// counted; processing continues unconditionally. Empty input is a zero-item
// success.
func Run[T any](items []T, op func(T) error, onProgress Progress) *Result {
	result := &Result{Total: len(items)}

	for i, item := range items {
		if err := op(item); err != nil {
			result.Failures++
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Successes++
		}
		if onProgress != nil {
			onProgress(i+1, result.Total)
		}
	}

	return result
}

// RunChunked applies op to fixed-size slices of items. Chunking bounds the
// size of any single external call only; counting stays per item, so a
// failed chunk records one error per item it contained and the conservation
// law over items still holds.
func RunChunked[T any](items []T, chunkSize int, op func([]T) error, onProgress Progress) *Result {
	if chunkSize <= 0 {
		chunkSize = 25
	}
	result := &Result{Total: len(items)}

	for start := 0; start < len(items); start += chunkSize {
		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		if err := op(chunk); err != nil {
			result.Failures += len(chunk)
			for i := range chunk {
				result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", start+i+1, err))
			}
		} else {
			result.Successes += len(chunk)
		}
		if onProgress != nil {
			onProgress(end, result.Total)
		}
	}

	return result
}
