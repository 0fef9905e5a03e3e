package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/mall-pricing/internal/domain/priceset"
	"github.com/xenking/mall-pricing/internal/domain/pricing"
	"github.com/xenking/mall-pricing/internal/wire"
)

const maxBodyBytes = 1 << 20

// PriceService is the price set use-case surface the handler depends on.
type PriceService interface {
	CalculateAndSave(ctx context.Context, req priceset.Request) (*priceset.PriceSet, error)
	CalculateAndSaveMany(ctx context.Context, reqs []priceset.Request) *priceset.BulkReport
	Get(ctx context.Context, sourceProductID string) (*priceset.PriceSet, error)
	Preview(base decimal.Decimal) (pricing.Derivation, error)
	Registry() *pricing.Registry
}

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// MaxBulkItems caps the number of items in one bulk request.
	MaxBulkItems int
}

// Handler serves the pricing JSON API.
type Handler struct {
	prices       PriceService
	maxBulkItems int
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(cfg HandlerConfig, prices PriceService) *Handler {
	return &Handler{
		prices:       prices,
		maxBulkItems: cfg.MaxBulkItems,
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/prices", h.CreatePriceSet)
	mux.HandleFunc("POST /api/prices/bulk", h.CreatePriceSets)
	mux.HandleFunc("POST /api/prices/preview", h.PreviewPrices)
	mux.HandleFunc("GET /api/prices/{sourceProductId}", h.GetPriceSet)
	mux.HandleFunc("GET /api/channels", h.ListChannels)
}

func readBody(w http.ResponseWriter, r *http.Request) (*jx.Decoder, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if len(data) == 0 {
		return nil, errors.New("empty request body")
	}
	return jx.DecodeBytes(data), nil
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		wire.EncodeError(e, status, message)
	})
}

// writeServiceError maps use-case errors to HTTP responses. Unclassified
// errors are logged and reported without detail.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		notFound     *priceset.ProductNotFoundError
		already      *priceset.AlreadyComputedError
		outOfRange   *priceset.PriceOutOfRangeError
		invalidPrice *priceset.InvalidBasePriceError
		invalidReq   *priceset.InvalidRequestError
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &already):
		writeError(w, http.StatusConflict, already.Error())
	case errors.As(err, &outOfRange):
		writeError(w, http.StatusUnprocessableEntity, outOfRange.Error())
	case errors.As(err, &invalidPrice):
		writeError(w, http.StatusUnprocessableEntity, invalidPrice.Error())
	case errors.As(err, &invalidReq):
		writeError(w, http.StatusBadRequest, invalidReq.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request canceled")
	default:
		zctx.From(ctx).Error("Price request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
