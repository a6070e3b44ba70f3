package repository

// FSOption applies a configuration option to the FSStore.
type FSOption func(*FSStore)

// WithKeepSets bounds how many historical artifact set directories are
// kept on disk. Older sets beyond the bound are pruned after each save.
// n <= 0 keeps everything.
func WithKeepSets(n int) FSOption {
	return func(s *FSStore) {
		s.keepSets = n
	}
}
