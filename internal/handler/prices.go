package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/mall-pricing/internal/domain/priceset"
	"github.com/xenking/mall-pricing/internal/wire"
)

// CreatePriceSet derives and stores the channel prices of one product.
func (h *Handler) CreatePriceSet(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := wire.DecodeRequest(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	set, err := h.prices.CalculateAndSave(r.Context(), req)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		wire.EncodePriceSet(e, set)
	})
}

// CreatePriceSets runs the bulk use case. Per-item failures, including items
// with missing fields, are part of the report, so the response is 200 whenever
// the item list itself is acceptable.
func (h *Handler) CreatePriceSets(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reqs, err := wire.DecodeBulkRequest(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}
	switch {
	case len(reqs) == 0:
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	case h.maxBulkItems > 0 && len(reqs) > h.maxBulkItems:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d items per request", h.maxBulkItems))
		return
	}

	report := h.prices.CalculateAndSaveMany(r.Context(), reqs)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		wire.EncodeBulkReport(e, report)
	})
}

// GetPriceSet returns the stored price set of a source product.
func (h *Handler) GetPriceSet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sourceProductId")

	set, err := h.prices.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, priceset.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("price set for %s not found", id))
			return
		}
		writeServiceError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		wire.EncodePriceSet(e, set)
	})
}

// PreviewPrices derives channel prices for an arbitrary base price without
// storing them.
func (h *Handler) PreviewPrices(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	base, err := wire.DecodePreviewRequest(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}

	derivation, err := h.prices.Preview(base)
	if err != nil {
		var (
			invalid    *priceset.InvalidBasePriceError
			outOfRange *priceset.BasePriceRangeError
		)
		switch {
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, invalid.Error())
			return
		case errors.As(err, &outOfRange):
			writeError(w, http.StatusBadRequest, outOfRange.Error())
			return
		}
		writeServiceError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		wire.EncodeDerivation(e, derivation)
	})
}

// ListChannels returns the channel to group assignments.
func (h *Handler) ListChannels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		wire.EncodeChannelGroups(e, h.prices.Registry())
	})
}
