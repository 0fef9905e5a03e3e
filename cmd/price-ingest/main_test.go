package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/mall-pricing/internal/domain/priceset"
)

func writeGz(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    priceset.Request
		wantOK  bool
		wantErr bool
	}{
		{name: "valid", line: "Mug\tkitchen", want: priceset.Request{ProductName: "Mug", CategoryTag: "kitchen"}, wantOK: true},
		{name: "crlf", line: "Mug\tkitchen\r", want: priceset.Request{ProductName: "Mug", CategoryTag: "kitchen"}, wantOK: true},
		{name: "blank", line: "   "},
		{name: "comment", line: "# exported 2026-09-01"},
		{name: "no tab", line: "Mug kitchen", wantErr: true},
		{name: "empty category", line: "Mug\t", wantErr: true},
		{name: "extra column", line: "Mug\tkitchen\t7900", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFiles(t *testing.T) {
	a := writeGz(t, "# header\nMug\tkitchen\nLamp\tliving\n")
	b := writeGz(t, "Rug\tliving\n\n")

	perFile, err := readFiles(context.Background(), zap.NewNop(), []string{a, b})
	require.NoError(t, err)

	assert.Equal(t, [][]priceset.Request{
		{{ProductName: "Mug", CategoryTag: "kitchen"}, {ProductName: "Lamp", CategoryTag: "living"}},
		{{ProductName: "Rug", CategoryTag: "living"}},
	}, perFile)
}

func TestReadFiles_BadLine(t *testing.T) {
	path := writeGz(t, "Mug\tkitchen\nbroken\n")

	_, err := readFiles(context.Background(), zap.NewNop(), []string{path})

	assert.ErrorContains(t, err, "line 2")
}

func TestDedupe(t *testing.T) {
	reqs := []priceset.Request{
		{ProductName: "Mug", CategoryTag: "kitchen"},
		{ProductName: "Mug", CategoryTag: "gift"},
		{ProductName: "Lamp", CategoryTag: "living"},
		{ProductName: "Mug", CategoryTag: "kitchen"},
		{ProductName: "Lamp", CategoryTag: "living"},
	}

	assert.Equal(t, []priceset.Request{
		{ProductName: "Mug", CategoryTag: "kitchen"},
		{ProductName: "Mug", CategoryTag: "gift"},
		{ProductName: "Lamp", CategoryTag: "living"},
	}, dedupe(reqs))
	assert.Nil(t, dedupe(nil))
}

func TestSplitBatches(t *testing.T) {
	reqs := make([]priceset.Request, 5)

	batches := splitBatches(reqs, 2)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[2], 1)
}

// fakeCalculator fails every request whose name starts with "x".
type fakeCalculator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeCalculator) CalculateAndSaveMany(_ context.Context, reqs []priceset.Request) *priceset.BulkReport {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	r := priceset.NewBulkReport()
	for i, req := range reqs {
		if req.ProductName[0] == 'x' {
			r.ErrorCount++
			r.Errors = append(r.Errors, priceset.ItemError{Index: i, ProductName: req.ProductName, Kind: priceset.KindNotFound})
			continue
		}
		r.SuccessCount++
		r.CreatedIDs = append(r.CreatedIDs, "id-"+req.ProductName)
	}
	return r
}

func TestProcessBatches(t *testing.T) {
	reqs := []priceset.Request{
		{ProductName: "a"}, {ProductName: "xb"}, {ProductName: "c"},
		{ProductName: "d"}, {ProductName: "xe"},
	}
	calc := &fakeCalculator{}

	report := processBatches(context.Background(), calc, reqs, 2, 2)

	assert.Equal(t, 3, calc.calls)
	assert.Equal(t, len(reqs), report.SuccessCount+report.ErrorCount)
	assert.Equal(t, []string{"id-a", "id-c", "id-d"}, report.CreatedIDs)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 1, report.Errors[0].Index)
	assert.Equal(t, "xb", report.Errors[0].ProductName)
	assert.Equal(t, 4, report.Errors[1].Index)
}
