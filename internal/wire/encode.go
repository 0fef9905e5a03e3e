// Package wire holds the JSON representation of price sets, derivations and
// bulk reports shared by the HTTP transport and the cache.
package wire

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/mall-pricing/internal/domain/priceset"
	"github.com/xenking/mall-pricing/internal/domain/pricing"
)

// Prices are written as bare JSON numbers carrying their exact decimal text.
func encodePrice(e *jx.Encoder, price decimal.Decimal) {
	e.Num(jx.Num(price.String()))
}

func encodeChannels(e *jx.Encoder, prices pricing.ChannelPrices) {
	e.ObjStart()
	prices.Each(func(c pricing.Channel, price decimal.Decimal) {
		e.FieldStart(string(c))
		encodePrice(e, price)
	})
	e.ObjEnd()
}

// EncodePriceSet writes set as a JSON object.
func EncodePriceSet(e *jx.Encoder, set *priceset.PriceSet) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(set.ID)
	e.FieldStart("sourceProductId")
	e.Str(set.SourceProductID)
	e.FieldStart("internalCode")
	e.Str(set.InternalCode)
	e.FieldStart("basePrice")
	encodePrice(e, set.BasePrice)
	e.FieldStart("primaryPrice")
	encodePrice(e, set.PrimaryPrice)
	e.FieldStart("channels")
	encodeChannels(e, set.Channels)
	e.FieldStart("createdAt")
	e.Str(set.CreatedAt.UTC().Format(time.RFC3339Nano))
	e.ObjEnd()
}

// MarshalPriceSet returns the JSON encoding of set.
func MarshalPriceSet(set *priceset.PriceSet) []byte {
	var e jx.Encoder
	EncodePriceSet(&e, set)
	return e.Bytes()
}

// EncodeDerivation writes an unsaved derivation as a JSON object.
func EncodeDerivation(e *jx.Encoder, d pricing.Derivation) {
	e.ObjStart()
	e.FieldStart("basePrice")
	encodePrice(e, d.Base)
	e.FieldStart("primaryPrice")
	encodePrice(e, d.Primary)
	e.FieldStart("channels")
	encodeChannels(e, d.Channels)
	e.ObjEnd()
}

// EncodeBulkReport writes the outcome of a bulk run.
func EncodeBulkReport(e *jx.Encoder, r *priceset.BulkReport) {
	e.ObjStart()
	e.FieldStart("successCount")
	e.Int(r.SuccessCount)
	e.FieldStart("errorCount")
	e.Int(r.ErrorCount)

	e.FieldStart("createdIds")
	e.ArrStart()
	for _, id := range r.CreatedIDs {
		e.Str(id)
	}
	e.ArrEnd()

	e.FieldStart("errors")
	e.ArrStart()
	for _, ie := range r.Errors {
		e.ObjStart()
		e.FieldStart("index")
		e.Int(ie.Index)
		e.FieldStart("productName")
		e.Str(ie.ProductName)
		e.FieldStart("categoryTag")
		e.Str(ie.CategoryTag)
		e.FieldStart("kind")
		e.Str(string(ie.Kind))
		e.FieldStart("message")
		e.Str(ie.Message)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("records")
	e.ArrStart()
	for i := range r.Records {
		EncodePriceSet(e, &r.Records[i])
	}
	e.ArrEnd()
	e.ObjEnd()
}

// EncodeChannelGroups writes the registry as [{channel, group}] in roster order.
func EncodeChannelGroups(e *jx.Encoder, reg *pricing.Registry) {
	e.ArrStart()
	for _, c := range reg.Channels() {
		g, _ := reg.GroupOf(c)
		e.ObjStart()
		e.FieldStart("channel")
		e.Str(string(c))
		e.FieldStart("group")
		e.Str(string(g))
		e.ObjEnd()
	}
	e.ArrEnd()
}

// EncodeError writes the error body returned by every failing endpoint.
func EncodeError(e *jx.Encoder, code int, message string) {
	e.ObjStart()
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
}
