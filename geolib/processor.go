package geolib

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const progressEvery = 10

type Processor struct {
	provider Provider
	logger   Logger
	opts     Opts
}

// IPColumn returns a name of the column which is used to take IP
// addresses from.
func (p *Processor) IPColumn() string {
	return p.opts.ipColumn()
}

// Process reads CSV from src and writes enriched CSV into dst. Output
// has the same rows in the same order with latitude and longitude
// columns appended.
//
// ErrEmptyCSV and ErrIPColumnNotFound are returned before anything is
// written to dst. Failed lookups do not fail a run, they are reported
// in counters and logs only.
func (p *Processor) Process(ctx context.Context, src io.Reader, dst io.Writer) (RunCounters, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()

	switch {
	case errors.Is(err, io.EOF):
		return RunCounters{}, ErrEmptyCSV
	case err != nil:
		return RunCounters{}, fmt.Errorf("cannot read csv header: %w", err)
	}

	ipIndex := p.findIPColumn(header)
	if ipIndex < 0 {
		return RunCounters{}, ErrIPColumnNotFound
	}

	writer := csv.NewWriter(dst)

	if err := writer.Write(appendLocation(header, Location{ColumnLatitude, ColumnLongitude})); err != nil {
		return RunCounters{}, fmt.Errorf("cannot write csv header: %w", err)
	}

	pool, err := newRowPool(ctx, p.opts.workers(), p.enrichRow)
	if err != nil {
		return RunCounters{}, err
	}

	defer pool.Release()

	stats := &runStats{}

	for rowNumber := 1; ; rowNumber++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			pool.Wait()

			return stats.Snapshot(), fmt.Errorf("cannot read csv row %d: %w", rowNumber, err)
		}

		if err := pool.Do(&rowTask{
			row:     row,
			ipIndex: ipIndex,
			number:  rowNumber,
			stats:   stats,
		}); err != nil {
			pool.Wait()

			return stats.Snapshot(), err
		}
	}

	for _, task := range pool.Wait() {
		if task.err != nil {
			return stats.Snapshot(), task.err
		}

		if err := writer.Write(task.result); err != nil {
			return stats.Snapshot(), fmt.Errorf("cannot write csv row %d: %w", task.number, err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return stats.Snapshot(), fmt.Errorf("cannot flush csv: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return stats.Snapshot(), fmt.Errorf("run was interrupted: %w", err)
	}

	counters := stats.Snapshot()

	p.logger.Complete(counters)

	return counters, nil
}

func (p *Processor) findIPColumn(header []string) int {
	name := p.opts.ipColumn()

	for i, v := range header {
		if strings.EqualFold(strings.TrimSpace(v), name) {
			return i
		}
	}

	return -1
}

func (p *Processor) enrichRow(ctx context.Context, task *rowTask) {
	ip := ""
	if task.ipIndex < len(task.row) {
		ip = strings.TrimSpace(task.row[task.ipIndex])
	}

	location := Location{}

	if ip != "" && ctx.Err() == nil {
		location = p.lookup(ctx, ip, task)
		p.pause(ctx)
	}

	task.result = appendLocation(task.row, location)

	if processed := task.stats.Processed(); processed%progressEvery == 0 {
		p.logger.Progress(processed)
	}
}

func (p *Processor) lookup(ctx context.Context, ip string, task *rowTask) Location {
	location, err := p.provider.Lookup(ctx, ip)
	if err == nil && !location.OK() {
		err = NewLookupError(FailureParse, ErrBadLocation)
	}

	task.stats.Looked(err)

	if err == nil {
		return location
	}

	if LookupFailure(err) == FailureRateLimited {
		p.logger.RateLimited(ip, task.number)
	} else {
		p.logger.LookupError(ip, task.number, err)
	}

	return Location{}
}

func (p *Processor) pause(ctx context.Context) {
	throttle := p.opts.throttle()
	if throttle == 0 {
		return
	}

	timer := time.NewTimer(throttle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func appendLocation(row []string, location Location) []string {
	rv := make([]string, 0, len(row)+2)
	rv = append(rv, row...)

	return append(rv, location.Latitude, location.Longitude)
}

func NewProcessor(provider Provider, logger Logger, opts Opts) *Processor {
	return &Processor{
		provider: provider,
		logger:   logger,
		opts:     opts,
	}
}
