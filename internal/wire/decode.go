package wire

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/mall-pricing/internal/domain/priceset"
	"github.com/xenking/mall-pricing/internal/domain/pricing"
)

// decodeDecimal accepts both JSON numbers and numeric strings.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(n.String())
	default:
		return decimal.Decimal{}, errors.Errorf("expected number, got %s", d.Next())
	}
}

func decodeChannels(d *jx.Decoder, prices *pricing.ChannelPrices) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		price, err := decodeDecimal(d)
		if err != nil {
			return errors.Wrapf(err, "channel %q", key)
		}
		if !prices.Set(pricing.Channel(key), price) {
			return errors.Errorf("unknown channel %q", key)
		}
		return nil
	})
}

// DecodePriceSet reads a price set written by EncodePriceSet.
func DecodePriceSet(d *jx.Decoder) (*priceset.PriceSet, error) {
	var set priceset.PriceSet
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			set.ID, err = d.Str()
		case "sourceProductId":
			set.SourceProductID, err = d.Str()
		case "internalCode":
			set.InternalCode, err = d.Str()
		case "basePrice":
			set.BasePrice, err = decodeDecimal(d)
		case "primaryPrice":
			set.PrimaryPrice, err = decodeDecimal(d)
		case "channels":
			err = decodeChannels(d, &set.Channels)
		case "createdAt":
			var s string
			if s, err = d.Str(); err == nil {
				set.CreatedAt, err = time.Parse(time.RFC3339Nano, s)
			}
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "decode %q", key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// UnmarshalPriceSet decodes the output of MarshalPriceSet.
func UnmarshalPriceSet(data []byte) (*priceset.PriceSet, error) {
	return DecodePriceSet(jx.DecodeBytes(data))
}

func decodeRequestFields(d *jx.Decoder, req *priceset.Request) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productName":
			req.ProductName, err = d.Str()
		case "categoryTag":
			req.CategoryTag, err = d.Str()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "decode %q", key)
		}
		return nil
	})
}

// DecodeRequest reads {productName, categoryTag}.
func DecodeRequest(d *jx.Decoder) (priceset.Request, error) {
	var req priceset.Request
	if err := decodeRequestFields(d, &req); err != nil {
		return priceset.Request{}, err
	}
	return req, nil
}

// DecodeBulkRequest reads {items: [{productName, categoryTag}, ...]}.
func DecodeBulkRequest(d *jx.Decoder) ([]priceset.Request, error) {
	var reqs []priceset.Request
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			var req priceset.Request
			if err := decodeRequestFields(d, &req); err != nil {
				return errors.Wrapf(err, "item %d", len(reqs))
			}
			reqs = append(reqs, req)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// DecodePreviewRequest reads {basePrice}. The field is required.
func DecodePreviewRequest(d *jx.Decoder) (decimal.Decimal, error) {
	var (
		base decimal.Decimal
		seen bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "basePrice" {
			return d.Skip()
		}
		seen = true
		var err error
		base, err = decodeDecimal(d)
		if err != nil {
			return errors.Wrap(err, "decode \"basePrice\"")
		}
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !seen {
		return decimal.Decimal{}, errors.New("basePrice is required")
	}
	return base, nil
}
