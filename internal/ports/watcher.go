package ports

// Watcher monitors a fixed set of files (aligner executable, index files,
// references, config) and triggers a callback when any of them changes.
// The adapter (fsnotify) watches parent directories, filters events down
// to the listed paths, and debounces rapid event bursts (index rebuilds
// touch the same file many times). Only one Watch call should be active
// at a time.
type Watcher interface {
	// Watch starts monitoring the given files. onChange is called with
	// the absolute path of each settled change and may be invoked from
	// any goroutine. Returns an error if a path's directory cannot be
	// watched.
	Watch(paths []string, onChange func(path string)) error

	// Stop ends monitoring and releases all resources. After Stop
	// returns, no further onChange calls fire. Safe to call twice.
	Stop() error
}
