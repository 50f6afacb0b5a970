package main

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/9seconds/csvgeo/geolib"
)

const processedPrefix = "processed_"

func defaultOutputPath(input string) string {
	return filepath.Join(filepath.Dir(input), processedPrefix+filepath.Base(input))
}

// processFile enriches input and stores a result in output. The result
// is written into a temporary file first and renamed only if the run
// has succeeded, so output never contains partial data.
func processFile(ctx context.Context,
	filesystem afero.Fs,
	processor *geolib.Processor,
	input, output string) (geolib.RunCounters, error) {
	if err := geolib.CheckFilename(input); err != nil {
		return geolib.RunCounters{}, fmt.Errorf("incorrect input file %s: %w", input, err)
	}

	if output == "" {
		output = defaultOutputPath(input)
	}

	src, err := filesystem.Open(input)
	if err != nil {
		return geolib.RunCounters{}, fmt.Errorf("cannot open input file: %w", err)
	}

	defer src.Close()

	tmpFile, err := afero.TempFile(filesystem, filepath.Dir(output), "."+processedPrefix)
	if err != nil {
		return geolib.RunCounters{}, fmt.Errorf("cannot create temporary file: %w", err)
	}

	tmpName := tmpFile.Name()
	renamed := false

	defer func() {
		tmpFile.Close()

		if !renamed {
			filesystem.Remove(tmpName) // nolint: errcheck
		}
	}()

	bufWriter := bufio.NewWriter(tmpFile)

	counters, err := processor.Process(ctx, bufio.NewReader(src), bufWriter)
	if err != nil {
		return counters, err
	}

	if err := bufWriter.Flush(); err != nil {
		return counters, fmt.Errorf("cannot write output: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return counters, fmt.Errorf("cannot close output: %w", err)
	}

	if err := filesystem.Rename(tmpName, output); err != nil {
		return counters, fmt.Errorf("cannot move output into %s: %w", output, err)
	}

	renamed = true

	return counters, nil
}
