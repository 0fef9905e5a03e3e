// Command price-ingest computes channel prices for every product listed in
// gzip-compressed TSV files of "name<TAB>category" lines.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/mall-pricing/internal/domain/priceset"
	"github.com/xenking/mall-pricing/internal/domain/pricing"
	"github.com/xenking/mall-pricing/internal/storage/postgres"
)

const (
	bloomFPR       = 0.001
	progressEvery  = 100_000
	maxLoggedFails = 50
)

type options struct {
	databaseURL string
	batchSize   int
	workers     int
	files       []string
}

func main() {
	var opts options

	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&opts.batchSize, "batch-size", 200, "products per bulk batch")
	flag.IntVar(&opts.workers, "workers", 4, "batches processed concurrently")
	flag.Parse()
	opts.files = flag.Args()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	switch {
	case opts.databaseURL == "":
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	case len(opts.files) == 0:
		lg.Fatal("No input files: pass one or more .tsv.gz paths")
	case opts.batchSize <= 0 || opts.workers <= 0:
		lg.Fatal("Batch size and workers must be positive")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	report, err := run(ctx, lg, opts)
	if err != nil {
		lg.Fatal("Price ingest failed", zap.Error(err))
	}
	if report.ErrorCount > 0 {
		os.Exit(2)
	}
}

func run(ctx context.Context, lg *zap.Logger, opts options) (*priceset.BulkReport, error) {
	registry, err := pricing.NewRegistry(pricing.DefaultAssignments())
	if err != nil {
		return nil, errors.Wrap(err, "build channel registry")
	}

	lg.Info("Reading input files", zap.Int("files", len(opts.files)))
	perFile, err := readFiles(ctx, lg, opts.files)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}

	var all []priceset.Request
	for _, reqs := range perFile {
		all = append(all, reqs...)
	}
	unique := dedupe(all)
	lg.Info("Input loaded",
		zap.Int("lines", len(all)),
		zap.Int("unique", len(unique)),
	)
	if len(unique) == 0 {
		return priceset.NewBulkReport(), nil
	}

	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return nil, errors.Wrap(err, "run migrations")
	}

	svc := priceset.NewService(
		postgres.NewProductRepository(pool),
		postgres.NewPriceSetRepository(pool),
		pricing.NewEngine(registry),
		nil,
	)

	report := processBatches(ctx, svc, unique, opts.batchSize, opts.workers)

	for i, ie := range report.Errors {
		if i == maxLoggedFails {
			lg.Warn("Further item failures omitted", zap.Int("omitted", len(report.Errors)-i))
			break
		}
		lg.Warn("Item failed",
			zap.Int("index", ie.Index),
			zap.String("product_name", ie.ProductName),
			zap.String("category_tag", ie.CategoryTag),
			zap.String("kind", string(ie.Kind)),
			zap.String("message", ie.Message),
		)
	}
	lg.Info("Price ingest finished",
		zap.Int("success_count", report.SuccessCount),
		zap.Int("error_count", report.ErrorCount),
	)
	return report, nil
}

// bulkCalculator is the part of priceset.Service the batch runner needs.
type bulkCalculator interface {
	CalculateAndSaveMany(ctx context.Context, reqs []priceset.Request) *priceset.BulkReport
}

// processBatches splits reqs into batches, runs up to workers of them at a
// time and merges the reports in input order. Item indexes in the merged
// report refer to reqs.
func processBatches(ctx context.Context, svc bulkCalculator, reqs []priceset.Request, batchSize, workers int) *priceset.BulkReport {
	batches := splitBatches(reqs, batchSize)
	reports := make([]*priceset.BulkReport, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, batch := range batches {
		g.Go(func() error {
			reports[i] = svc.CalculateAndSaveMany(gctx, batch)
			return nil
		})
	}
	// Workers never return errors; failures live in the reports.
	_ = g.Wait()

	merged := priceset.NewBulkReport()
	for i, r := range reports {
		merged.Merge(r, i*batchSize)
	}
	return merged
}

func splitBatches(reqs []priceset.Request, size int) [][]priceset.Request {
	batches := make([][]priceset.Request, 0, (len(reqs)+size-1)/size)
	for start := 0; start < len(reqs); start += size {
		end := min(start+size, len(reqs))
		batches = append(batches, reqs[start:end])
	}
	return batches
}

// dedupe drops repeated (name, category) keys, keeping first occurrences.
// A bloom filter sees every key; only keys it reports as already seen are
// tracked exactly, so the exact set stays as small as the duplicates.
func dedupe(reqs []priceset.Request) []priceset.Request {
	if len(reqs) == 0 {
		return nil
	}
	filter := bloom.NewWithEstimates(uint(len(reqs)), bloomFPR)
	maybeRepeated := make(map[string]struct{})
	for _, r := range reqs {
		if key := requestKey(r); filter.TestAndAddString(key) {
			maybeRepeated[key] = struct{}{}
		}
	}

	out := make([]priceset.Request, 0, len(reqs))
	emitted := make(map[string]struct{}, len(maybeRepeated))
	for _, r := range reqs {
		key := requestKey(r)
		if _, candidate := maybeRepeated[key]; candidate {
			if _, done := emitted[key]; done {
				continue
			}
			emitted[key] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

func requestKey(r priceset.Request) string {
	return r.ProductName + "\x00" + r.CategoryTag
}

// readFiles parses the input files concurrently, keeping file order.
func readFiles(ctx context.Context, lg *zap.Logger, files []string) ([][]priceset.Request, error) {
	out := make([][]priceset.Request, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			reqs, err := readFile(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "file %s", path)
			}
			lg.Info("File loaded", zap.String("path", path), zap.Int("products", len(reqs)))
			out[i] = reqs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func readFile(ctx context.Context, path string) ([]priceset.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	var reqs []priceset.Request
	scanner := bufio.NewScanner(gz)
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++
		if line%progressEvery == 0 {
			zctx.From(ctx).Info("Read progress", zap.String("path", path), zap.Int("lines", line))
		}

		req, ok, err := parseLine(scanner.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if ok {
			reqs = append(reqs, req)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	return reqs, nil
}

// parseLine reads "name<TAB>category". Blank lines and lines starting with
// '#' are skipped.
func parseLine(text string) (priceset.Request, bool, error) {
	text = strings.TrimRight(text, "\r")
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
		return priceset.Request{}, false, nil
	}
	name, category, found := strings.Cut(text, "\t")
	name, category = strings.TrimSpace(name), strings.TrimSpace(category)
	if !found || name == "" || category == "" || strings.Contains(category, "\t") {
		return priceset.Request{}, false, errors.Errorf("want \"name<TAB>category\", got %q", text)
	}
	return priceset.Request{ProductName: name, CategoryTag: category}, true, nil
}
