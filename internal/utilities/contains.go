package utilities

// Contains reports whether the slice holds the given value.
func Contains[T comparable](slice []T, v T) bool {
	for _, item := range slice {
		if item == v {
			return true
		}
	}
	return false
}
