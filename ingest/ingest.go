// Package ingest drives ingestion runs: pull the upstream record set page
// by page and upsert every record into the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/semanticallynull/pipeline-backend/customer"
	"github.com/semanticallynull/pipeline-backend/upstream"
)

// ErrIngestionFailed marks a run that stored some records and then aborted.
// The count returned alongside it is the number of records already stored.
var ErrIngestionFailed = errors.New("ingestion failed")

// Source yields the upstream record set one page at a time.
type Source interface {
	FetchPage(ctx context.Context, page int) (upstream.Page, error)
}

// Store is the subset of the customer repository a run mutates.
type Store interface {
	Upsert(ctx context.Context, c customer.Customer) error
}

type Ingestor struct {
	source  Source
	store   Store
	logger  *slog.Logger
	metrics *Metrics
}

func New(source Source, store Store, logger *slog.Logger, metrics *Metrics) *Ingestor {
	return &Ingestor{
		source:  source,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Run executes one ingestion run: pages are fetched in order and every
// record on a page is upserted before the next page is requested. A fetch
// failure before anything was stored fails the whole run with no store
// mutation; a fetch or upsert failure after that aborts the run with
// ErrIngestionFailed and the count of records already upserted. Runs are
// independent, there is no queuing or retrying.
func (i *Ingestor) Run(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("ingest").Start(ctx, "ingest.run")
	defer span.End()

	start := time.Now()

	processed := 0
	fetched := 0
	for pageNum := 1; ; pageNum++ {
		p, err := i.source.FetchPage(ctx, pageNum)
		if err != nil {
			i.metrics.observeRun(processed, time.Since(start), err)
			if processed == 0 {
				return 0, fmt.Errorf("fetch upstream records: %w", err)
			}
			return processed, fmt.Errorf("%w after %d records: %v", ErrIngestionFailed, processed, err)
		}

		for _, rec := range p.Data {
			if err := i.store.Upsert(ctx, mapRecord(rec)); err != nil {
				i.metrics.observeRun(processed, time.Since(start), err)
				return processed, fmt.Errorf("%w after %d records: upsert %s: %v",
					ErrIngestionFailed, processed, rec.CustomerID, err)
			}
			processed++
		}

		fetched += len(p.Data)
		if fetched >= p.Total || len(p.Data) == 0 {
			break
		}
	}

	span.SetAttributes(attribute.Int("ingest.records_processed", processed))
	i.metrics.observeRun(processed, time.Since(start), nil)
	i.logger.InfoContext(ctx, "ingestion run complete", "records_processed", processed)
	return processed, nil
}

// mapRecord converts an upstream wire record into a store row. Date and
// timestamp strings that fail to parse are stored as absent rather than
// failing the record, matching the source system's behavior.
func mapRecord(r upstream.Record) customer.Customer {
	return customer.Customer{
		CustomerID:     r.CustomerID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		DateOfBirth:    parseDate(r.DateOfBirth),
		AccountBalance: r.AccountBalance,
		CreatedAt:      parseTimestamp(r.CreatedAt),
	}
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	// Accept plain dates and date-prefixed timestamps ("2006-01-02T...").
	v := *s
	if len(v) > 10 && v[10] == 'T' {
		v = v[:10]
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}

func parseTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", *s); err == nil {
		return &t
	}
	return nil
}
