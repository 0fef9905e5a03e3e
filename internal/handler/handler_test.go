package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/mall-pricing/internal/domain/priceset"
	"github.com/xenking/mall-pricing/internal/domain/pricing"
)

// --- Mock implementation ---

type mockPriceService struct {
	engine *pricing.Engine

	createFn func(req priceset.Request) (*priceset.PriceSet, error)
	getFn    func(id string) (*priceset.PriceSet, error)
	bulkReqs []priceset.Request
}

func (m *mockPriceService) CalculateAndSave(_ context.Context, req priceset.Request) (*priceset.PriceSet, error) {
	return m.createFn(req)
}

func (m *mockPriceService) CalculateAndSaveMany(_ context.Context, reqs []priceset.Request) *priceset.BulkReport {
	m.bulkReqs = reqs
	r := priceset.NewBulkReport()
	r.SuccessCount = 1
	r.ErrorCount = len(reqs) - 1
	r.CreatedIDs = []string{"set-1"}
	r.Records = []priceset.PriceSet{*newPriceSet("p1", 7900)}
	for i := 1; i < len(reqs); i++ {
		item := priceset.ItemError{
			Index:       i,
			ProductName: reqs[i].ProductName,
			CategoryTag: reqs[i].CategoryTag,
			Kind:        priceset.KindAlreadyComputed,
			Message:     "prices already computed for " + reqs[i].ProductName,
		}
		if err := reqs[i].Validate(); err != nil {
			item.Kind = priceset.KindInvalidRequest
			item.Message = err.Error()
		}
		r.Errors = append(r.Errors, item)
	}
	return r
}

func (m *mockPriceService) Get(_ context.Context, id string) (*priceset.PriceSet, error) {
	return m.getFn(id)
}

func (m *mockPriceService) Preview(base decimal.Decimal) (pricing.Derivation, error) {
	return priceset.NewService(nil, nil, m.engine, nil).Preview(base)
}

func (m *mockPriceService) Registry() *pricing.Registry {
	return m.engine.Registry()
}

func newPriceSet(source string, base int64) *priceset.PriceSet {
	d := pricing.NewEngine(pricing.DefaultRegistry()).Derive(decimal.NewFromInt(base))
	return &priceset.PriceSet{
		ID:              "set-1",
		SourceProductID: source,
		InternalCode:    "IC-" + source,
		BasePrice:       d.Base,
		PrimaryPrice:    d.Primary,
		Channels:        d.Channels,
		CreatedAt:       time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestServer(t *testing.T, svc *mockPriceService, maxBulk int) http.Handler {
	t.Helper()
	if svc.engine == nil {
		svc.engine = pricing.NewEngine(pricing.DefaultRegistry())
	}
	mux := http.NewServeMux()
	NewHandler(HandlerConfig{MaxBulkItems: maxBulk}, svc).Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code int, message string) {
	t.Helper()
	err := jx.DecodeBytes(rec.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			code, err = d.Int()
		case "message":
			message, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	require.NoError(t, err)
	return code, message
}

// --- Tests ---

func TestCreatePriceSet_Created(t *testing.T) {
	var got priceset.Request
	svc := &mockPriceService{createFn: func(req priceset.Request) (*priceset.PriceSet, error) {
		got = req
		return newPriceSet("p1", 7900), nil
	}}

	rec := do(t, newTestServer(t, svc, 0), http.MethodPost, "/api/prices",
		`{"productName":"Mug","categoryTag":"kitchen"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, priceset.Request{ProductName: "Mug", CategoryTag: "kitchen"}, got)
	assert.Contains(t, rec.Body.String(), `"sourceProductId":"p1"`)
	assert.Contains(t, rec.Body.String(), `"primaryPrice":17900`)
	assert.Contains(t, rec.Body.String(), `"gmarket":20900`)
}

func TestCreatePriceSet_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "product not found",
			err:        &priceset.ProductNotFoundError{ProductName: "Mug", CategoryTag: "kitchen"},
			wantStatus: http.StatusNotFound,
			wantMsg:    "product Mug (category kitchen) not found",
		},
		{
			name:       "already computed",
			err:        &priceset.AlreadyComputedError{SourceProductID: "p1", ProductName: "Mug"},
			wantStatus: http.StatusConflict,
			wantMsg:    "prices already computed for Mug",
		},
		{
			name:       "out of range",
			err:        &priceset.PriceOutOfRangeError{SourceProductID: "p1", ProductName: "Mug"},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "source price of Mug too large to compute",
		},
		{
			name:       "negative base price",
			err:        &priceset.InvalidBasePriceError{SourceProductID: "p1", BasePrice: decimal.NewFromInt(-1)},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "base price -1 of product p1 must not be negative",
		},
		{
			name:       "invalid request",
			err:        &priceset.InvalidRequestError{Field: "categoryTag"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "categoryTag is required",
		},
		{
			name:       "storage failure",
			err:        errors.Wrap(errors.New("ERROR: relation \"price_sets\" does not exist (SQLSTATE 42P01)"), "create price set"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPriceService{createFn: func(priceset.Request) (*priceset.PriceSet, error) {
				return nil, tt.err
			}}

			rec := do(t, newTestServer(t, svc, 0), http.MethodPost, "/api/prices",
				`{"productName":"Mug","categoryTag":"kitchen"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			code, msg := decodeError(t, rec)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, tt.wantMsg, msg)
			assert.NotContains(t, rec.Body.String(), "SQLSTATE")
		})
	}
}

func TestCreatePriceSet_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "productName=Mug"},
		{"wrong type", `{"productName":1,"categoryTag":"kitchen"}`},
		{"missing name", `{"categoryTag":"kitchen"}`},
		{"missing category", `{"productName":"Mug"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPriceService{createFn: func(priceset.Request) (*priceset.PriceSet, error) {
				t.Fatal("service must not be called")
				return nil, nil
			}}

			rec := do(t, newTestServer(t, svc, 0), http.MethodPost, "/api/prices", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreatePriceSets(t *testing.T) {
	svc := &mockPriceService{}
	rec := do(t, newTestServer(t, svc, 10), http.MethodPost, "/api/prices/bulk", `{"items":[
		{"productName":"Mug","categoryTag":"kitchen"},
		{"productName":"Plate","categoryTag":"kitchen"}
	]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, svc.bulkReqs, 2)
	body := rec.Body.String()
	assert.Contains(t, body, `"successCount":1`)
	assert.Contains(t, body, `"errorCount":1`)
	assert.Contains(t, body, `"createdIds":["set-1"]`)
	assert.Contains(t, body, `"index":1,"productName":"Plate"`)
}

func TestCreatePriceSets_BlankItemIsReported(t *testing.T) {
	svc := &mockPriceService{}
	rec := do(t, newTestServer(t, svc, 10), http.MethodPost, "/api/prices/bulk", `{"items":[
		{"productName":"Mug","categoryTag":"kitchen"},
		{"productName":"","categoryTag":"kitchen"}
	]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.bulkReqs, 2)
	assert.Equal(t, priceset.Request{CategoryTag: "kitchen"}, svc.bulkReqs[1])
	body := rec.Body.String()
	assert.Contains(t, body, `"successCount":1`)
	assert.Contains(t, body, `"errorCount":1`)
	assert.Contains(t, body, `"kind":"invalid_request"`)
	assert.Contains(t, body, `"message":"productName is required"`)
}

func TestCreatePriceSets_Limits(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "empty items",
			body:    `{"items":[]}`,
			wantMsg: "items must not be empty",
		},
		{
			name: "too many items",
			body: `{"items":[{"productName":"a","categoryTag":"x"},{"productName":"b","categoryTag":"x"},` +
				`{"productName":"c","categoryTag":"x"}]}`,
			wantMsg: "at most 2 items per request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPriceService{}
			rec := do(t, newTestServer(t, svc, 2), http.MethodPost, "/api/prices/bulk", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			_, msg := decodeError(t, rec)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Nil(t, svc.bulkReqs)
		})
	}
}

func TestGetPriceSet(t *testing.T) {
	svc := &mockPriceService{getFn: func(id string) (*priceset.PriceSet, error) {
		if id == "p1" {
			return newPriceSet("p1", 20000), nil
		}
		return nil, errors.Wrapf(priceset.ErrNotFound, "find price set %q", id)
	}}
	h := newTestServer(t, svc, 0)

	rec := do(t, h, http.MethodGet, "/api/prices/p1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"primaryPrice":40900`)
	assert.Contains(t, rec.Body.String(), `"kshop":41000`)

	rec = do(t, h, http.MethodGet, "/api/prices/p2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, msg := decodeError(t, rec)
	assert.Equal(t, "price set for p2 not found", msg)
}

func TestPreviewPrices(t *testing.T) {
	h := newTestServer(t, &mockPriceService{}, 0)

	rec := do(t, h, http.MethodPost, "/api/prices/preview", `{"basePrice":9899}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"primaryPrice":21900`)

	rec = do(t, h, http.MethodPost, "/api/prices/preview", `{"basePrice":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/prices/preview", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewPrices_BaseOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"huge exponent", `{"basePrice":"1e20000000"}`},
		{"huge exponent number", `{"basePrice":1e20000000}`},
		{"tiny exponent", `{"basePrice":"1e-20000000"}`},
		{"fraction", `{"basePrice":9899.5}`},
		{"above column range", `{"basePrice":2147483648}`},
		{"negative huge exponent", `{"basePrice":"-1e20000000"}`},
	}

	h := newTestServer(t, &mockPriceService{}, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/prices/preview", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			_, msg := decodeError(t, rec)
			assert.Equal(t, "base price must be a whole amount from 0 to 2147483647", msg)
			assert.Less(t, rec.Body.Len(), 200)
		})
	}
}

func TestPreviewPrices_WholeAmountForms(t *testing.T) {
	h := newTestServer(t, &mockPriceService{}, 0)

	for _, body := range []string{
		`{"basePrice":"9.899e3"}`,
		`{"basePrice":9899.000}`,
		`{"basePrice":"2147483647"}`,
	} {
		rec := do(t, h, http.MethodPost, "/api/prices/preview", body)
		assert.Equal(t, http.StatusOK, rec.Code, body)
	}

	rec := do(t, h, http.MethodPost, "/api/prices/preview", `{"basePrice":"9.899e3"}`)
	assert.Contains(t, rec.Body.String(), `"basePrice":9899,`)
	assert.Contains(t, rec.Body.String(), `"primaryPrice":21900`)
}

func TestListChannels(t *testing.T) {
	rec := do(t, newTestServer(t, &mockPriceService{}, 0), http.MethodGet, "/api/channels", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var n int
	err := jx.DecodeBytes(rec.Body.Bytes()).Arr(func(d *jx.Decoder) error {
		n++
		return d.Skip()
	})
	require.NoError(t, err)
	assert.Equal(t, len(pricing.AllChannels()), n)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t, &mockPriceService{}, 0), http.MethodGet, "/api/prices", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
