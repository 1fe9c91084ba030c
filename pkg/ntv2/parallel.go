package ntv2

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// LoadOptions controls loading of several grid files.
type LoadOptions struct {
	// Parallel enables concurrent loading.
	Parallel bool

	// Workers is the number of loader goroutines.
	// If 0, defaults to runtime.NumCPU(). Only used when Parallel is true.
	Workers int

	// SkipErrors keeps loading when a file fails; failures are collected.
	// When false, the first error stops loading and is returned alone.
	SkipErrors bool

	// Progress is called after each file is processed with
	// (loaded, total).
	Progress func(loaded, total int)

	// Logger receives one entry per failed file. Nil discards them.
	Logger logrus.FieldLogger

	// Parse is applied to every file.
	Parse ParseOptions
}

// DefaultLoadOptions returns load options with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Progress:   nil,
		Logger:     nil,
		Parse:      DefaultParseOptions(),
	}
}

// LoadGridFilesParallel loads grid files with a worker pool and returns them
// as a GridSet in the order of paths, whatever order they finish in.
//
// Example:
//
//	set, errs := ntv2.LoadGridFilesParallel(
//	    []string{"ntv2_0.gsb", "BETA2007.gsb"},
//	    ntv2.LoadOptions{
//	        Parallel:   true,
//	        SkipErrors: true,
//	        Parse:      ntv2.DefaultParseOptions(),
//	        Progress: func(loaded, total int) {
//	            fmt.Printf("\rLoading: %d/%d", loaded, total)
//	        },
//	    })
func LoadGridFilesParallel(paths []string, opts LoadOptions) (*GridSet, []error) {
	if len(paths) == 0 {
		return NewGridSet(), nil
	}

	if !opts.Parallel {
		return loadGridFilesSerial(paths, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type loadResult struct {
		index int
		grid  *GridFile
		err   error
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				grid, err := Open(paths[index], opts.Parse)
				results <- loadResult{index: index, grid: grid, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	log := loggerOrDiscard(opts.Logger)
	gridMap := make(map[int]*GridFile)
	var errs []error
	loaded := 0
	failed := false

	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}

		// Drain remaining results after a fatal error so workers can exit.
		if failed {
			continue
		}

		// Open already prefixes errors with the path.
		if result.err != nil {
			log.WithField("path", paths[result.index]).WithError(result.err).Error("grid load failed")

			errs = append(errs, result.err)
			if !opts.SkipErrors {
				failed = true
			}
			continue
		}

		gridMap[result.index] = result.grid
	}

	if failed {
		return nil, errs[:1]
	}

	grids := make([]*GridFile, 0, len(gridMap))
	for i := 0; i < len(paths); i++ {
		if grid, ok := gridMap[i]; ok {
			grids = append(grids, grid)
		}
	}

	return NewGridSet(grids...), errs
}

// loadGridFilesSerial loads files one at a time (fallback when Parallel=false).
func loadGridFilesSerial(paths []string, opts LoadOptions) (*GridSet, []error) {
	log := loggerOrDiscard(opts.Logger)
	grids := make([]*GridFile, 0, len(paths))
	var errs []error

	for i, path := range paths {
		grid, err := Open(path, opts.Parse)

		if opts.Progress != nil {
			opts.Progress(i+1, len(paths))
		}

		if err != nil {
			log.WithField("path", path).WithError(err).Error("grid load failed")

			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}

		grids = append(grids, grid)
	}

	return NewGridSet(grids...), errs
}
