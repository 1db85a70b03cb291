package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
	"github.com/Ingramml/ca-lobby-mono/internal/warehouse"
)

const insertBatchSize = 1000

// Pipeline downloads a disclosure export and loads it into the warehouse.
type Pipeline struct {
	Store    *warehouse.Store
	Registry *Registry
}

// RunResult summarizes one ingest run.
type RunResult struct {
	SourceID   string
	ArchiveURL string
	RowsFound  int
	RowsSaved  int
	RowErrors  int
}

// Run executes a full download-normalize-load cycle for one source. The run
// is recorded in ingest_runs whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, sourceID string) (*RunResult, error) {
	src, err := p.Registry.SourceByID(sourceID)
	if err != nil {
		return nil, err
	}

	runID, err := p.Store.StartRun(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	result, err := p.run(ctx, src)
	status := "completed"
	if err != nil {
		status = "failed"
		result = &RunResult{SourceID: sourceID}
	}
	if finishErr := p.Store.FinishRun(ctx, runID, status, result.RowsFound, result.RowsSaved, result.RowErrors); finishErr != nil {
		log.Printf("failed to record run completion: %v", finishErr)
	}
	return result, err
}

func (p *Pipeline) run(ctx context.Context, src *SourceConfig) (*RunResult, error) {
	fetcher := NewFetcher(src.Fetch)

	log.Printf("[%s] fetching index %s", src.ID, src.IndexURL)
	indexHTML, err := fetcher.Fetch(ctx, src.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("index fetch failed: %w", err)
	}

	archiveURL, err := FindLatestArchive(indexHTML, src.IndexURL, src.LinkSelector, src.LinkPattern)
	if err != nil {
		return nil, err
	}

	log.Printf("[%s] downloading archive %s", src.ID, archiveURL)
	archive, err := fetcher.Fetch(ctx, archiveURL)
	if err != nil {
		return nil, fmt.Errorf("archive fetch failed: %w", err)
	}

	reader, err := openExportCSV(archive, src.ArchiveFile)
	if err != nil {
		return nil, err
	}

	result := &RunResult{SourceID: src.ID, ArchiveURL: archiveURL}
	if err := p.loadCSV(ctx, reader, src.Columns, result); err != nil {
		return nil, err
	}

	log.Printf("[%s] run complete: %d found, %d saved, %d row errors",
		src.ID, result.RowsFound, result.RowsSaved, result.RowErrors)
	return result, nil
}

// openExportCSV returns a reader over the export's CSV content, unpacking a
// zip archive when the source names a file inside one.
func openExportCSV(data []byte, archiveFile string) (io.Reader, error) {
	if archiveFile == "" {
		return bytes.NewReader(data), nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, archiveFile) || strings.HasSuffix(strings.ToUpper(f.Name), "/"+strings.ToUpper(archiveFile)) {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
			}
			// The archive is already fully in memory; draining the
			// entry keeps the pipeline free of open handles.
			defer rc.Close()
			content, err := io.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s in archive: %w", f.Name, err)
			}
			return bytes.NewReader(content), nil
		}
	}
	return nil, fmt.Errorf("archive does not contain %s", archiveFile)
}

func (p *Pipeline) loadCSV(ctx context.Context, r io.Reader, columns ColumnMap, result *RunResult) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	var batch []models.Activity
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.RowErrors++
			continue
		}
		result.RowsFound++

		cols := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(row) {
				cols[name] = row[i]
			}
		}

		activity, err := NormalizeRow(cols, columns)
		if err != nil {
			result.RowErrors++
			continue
		}
		batch = append(batch, activity)

		if len(batch) >= insertBatchSize {
			if err := p.flush(ctx, batch, result); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		return p.flush(ctx, batch, result)
	}
	return nil
}

func (p *Pipeline) flush(ctx context.Context, batch []models.Activity, result *RunResult) error {
	n, err := p.Store.InsertActivities(ctx, batch)
	if err != nil {
		return fmt.Errorf("insert batch failed: %w", err)
	}
	result.RowsSaved += n
	return nil
}
