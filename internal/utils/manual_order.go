package utils

import "cmp"

// ManualOrderCompare returns a comparison function for slices.SortFunc that orders values by the
// first reference entry each is equivalent to. Values matching a reference entry sort before values
// that match none; unmatched values fall back to their natural order.
func ManualOrderCompare[T cmp.Ordered, U any](reference []U, equivalent func(U, T) bool) func(first T, second T) int {
	referencePosition := func(value T) int {
		for referenceIndex, referenceEntry := range reference {
			if equivalent(referenceEntry, value) {
				return referenceIndex
			}
		}
		return -1
	}

	return func(first T, second T) int {
		firstPosition := referencePosition(first)
		secondPosition := referencePosition(second)

		switch {
		case firstPosition >= 0 && secondPosition >= 0:
			return cmp.Compare(firstPosition, secondPosition)
		case firstPosition >= 0:
			return -1
		case secondPosition >= 0:
			return 1
		default:
			return cmp.Compare(first, second)
		}
	}
}
