package services

import "fmt"

// WorkerCount caps the configured pool size at the number of work units so
// no worker is started without work. It returns 0 when there is nothing to do.
func WorkerCount(maxWorkers, units int) int {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return min(maxWorkers, units)
}

// Partition splits items into exactly parts contiguous groups whose sizes
// differ by at most one. The first len(items)%parts groups take the extra
// item, and concatenating the groups in order yields items again.
// When parts exceeds len(items) the trailing groups are empty.
func Partition[T any](items []T, parts int) ([][]T, error) {
	if parts < 1 {
		return nil, fmt.Errorf("partition: parts must be at least 1, got %d", parts)
	}

	size, extra := len(items)/parts, len(items)%parts
	out := make([][]T, parts)

	start := 0
	for i := range out {
		end := start + size
		if i < extra {
			end++
		}
		out[i] = items[start:end:end]
		start = end
	}

	return out, nil
}
