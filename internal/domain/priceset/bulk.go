package priceset

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ItemError describes one failed request of a bulk run.
type ItemError struct {
	Index       int
	ProductName string
	CategoryTag string
	Kind        ErrorKind
	Message     string
}

// BulkReport aggregates the outcome of a bulk run. SuccessCount+ErrorCount
// always equals the number of requests, and CreatedIDs has one entry per
// success in request order.
type BulkReport struct {
	SuccessCount int
	ErrorCount   int
	CreatedIDs   []string
	Errors       []ItemError
	Records      []PriceSet
}

// NewBulkReport returns an empty report.
func NewBulkReport() *BulkReport {
	return &BulkReport{
		CreatedIDs: []string{},
		Errors:     []ItemError{},
		Records:    []PriceSet{},
	}
}

func (r *BulkReport) addSuccess(set *PriceSet) {
	r.SuccessCount++
	r.CreatedIDs = append(r.CreatedIDs, set.ID)
	r.Records = append(r.Records, *set)
}

func (r *BulkReport) addError(index int, req Request, kind ErrorKind, message string) {
	r.ErrorCount++
	r.Errors = append(r.Errors, ItemError{
		Index:       index,
		ProductName: req.ProductName,
		CategoryTag: req.CategoryTag,
		Kind:        kind,
		Message:     message,
	})
}

// Merge appends other to r. Indexes in other are shifted by offset so they
// refer to positions in the combined input.
func (r *BulkReport) Merge(other *BulkReport, offset int) {
	r.SuccessCount += other.SuccessCount
	r.ErrorCount += other.ErrorCount
	r.CreatedIDs = append(r.CreatedIDs, other.CreatedIDs...)
	r.Records = append(r.Records, other.Records...)
	for _, e := range other.Errors {
		e.Index += offset
		r.Errors = append(r.Errors, e)
	}
}

// CalculateAndSaveMany runs CalculateAndSave for each request in order. A
// failed item is recorded and processing continues. If ctx is canceled, the
// remaining items are recorded as canceled.
func (s *Service) CalculateAndSaveMany(ctx context.Context, reqs []Request) *BulkReport {
	lg := zctx.From(ctx)
	report := NewBulkReport()

	for i, req := range reqs {
		if ctx.Err() != nil {
			for j := i; j < len(reqs); j++ {
				report.addError(j, reqs[j], KindCanceled, publicMessage(KindCanceled, ctx.Err()))
			}
			break
		}

		set, err := s.CalculateAndSave(ctx, req)
		if err != nil {
			kind := KindOf(err)
			if kind == KindInternal {
				lg.Error("Price calculation failed",
					zap.Int("index", i),
					zap.String("product_name", req.ProductName),
					zap.String("category_tag", req.CategoryTag),
					zap.Error(err),
				)
			}
			report.addError(i, req, kind, publicMessage(kind, err))
			continue
		}
		report.addSuccess(set)
	}

	lg.Info("Bulk price calculation finished",
		zap.Int("requested", len(reqs)),
		zap.Int("succeeded", report.SuccessCount),
		zap.Int("failed", report.ErrorCount),
	)
	return report
}
