package pricing

import "github.com/shopspring/decimal"

// ChannelPrices holds one sale price per channel. The shape is fixed: adding a
// channel means adding a field here and a case in slot, which NewRegistry
// verifies at startup.
type ChannelPrices struct {
	Gmarket     decimal.Decimal
	Auction     decimal.Decimal
	ElevenSt    decimal.Decimal
	Interpark   decimal.Decimal
	Wemakeprice decimal.Decimal
	Tmon        decimal.Decimal
	Lotteon     decimal.Decimal
	SSG         decimal.Decimal

	Coupang    decimal.Decimal
	Smartstore decimal.Decimal
	KakaoGift  decimal.Decimal
	Musinsa    decimal.Decimal
	Ohouse     decimal.Decimal
	Hmall      decimal.Decimal
	GSShop     decimal.Decimal

	OwnMall      decimal.Decimal
	Cafe24       decimal.Decimal
	Godomall     decimal.Decimal
	Makeshop     decimal.Decimal
	Imweb        decimal.Decimal
	Sixshop      decimal.Decimal
	TossShopping decimal.Decimal
	KakaoStore   decimal.Decimal
	Ably         decimal.Decimal
	Zigzag       decimal.Decimal
	WConcept     decimal.Decimal

	CJOnstyle         decimal.Decimal
	LotteHomeshopping decimal.Decimal
	NSMall            decimal.Decimal
	ShinsegaeTV       decimal.Decimal
	KShop             decimal.Decimal
}

// slot returns the field that stores the price for c, or nil when the struct
// has no field for it.
func (p *ChannelPrices) slot(c Channel) *decimal.Decimal {
	switch c {
	case Gmarket:
		return &p.Gmarket
	case Auction:
		return &p.Auction
	case ElevenSt:
		return &p.ElevenSt
	case Interpark:
		return &p.Interpark
	case Wemakeprice:
		return &p.Wemakeprice
	case Tmon:
		return &p.Tmon
	case Lotteon:
		return &p.Lotteon
	case SSG:
		return &p.SSG
	case Coupang:
		return &p.Coupang
	case Smartstore:
		return &p.Smartstore
	case KakaoGift:
		return &p.KakaoGift
	case Musinsa:
		return &p.Musinsa
	case Ohouse:
		return &p.Ohouse
	case Hmall:
		return &p.Hmall
	case GSShop:
		return &p.GSShop
	case OwnMall:
		return &p.OwnMall
	case Cafe24:
		return &p.Cafe24
	case Godomall:
		return &p.Godomall
	case Makeshop:
		return &p.Makeshop
	case Imweb:
		return &p.Imweb
	case Sixshop:
		return &p.Sixshop
	case TossShopping:
		return &p.TossShopping
	case KakaoStore:
		return &p.KakaoStore
	case Ably:
		return &p.Ably
	case Zigzag:
		return &p.Zigzag
	case WConcept:
		return &p.WConcept
	case CJOnstyle:
		return &p.CJOnstyle
	case LotteHomeshopping:
		return &p.LotteHomeshopping
	case NSMall:
		return &p.NSMall
	case ShinsegaeTV:
		return &p.ShinsegaeTV
	case KShop:
		return &p.KShop
	}
	return nil
}

// Get returns the price stored for c. ok is false for channels outside the roster.
func (p ChannelPrices) Get(c Channel) (price decimal.Decimal, ok bool) {
	s := p.slot(c)
	if s == nil {
		return decimal.Zero, false
	}
	return *s, true
}

// Set stores price for c. It reports false for channels outside the roster.
func (p *ChannelPrices) Set(c Channel, price decimal.Decimal) bool {
	s := p.slot(c)
	if s == nil {
		return false
	}
	*s = price
	return true
}

// Each calls fn for every channel in canonical order.
func (p ChannelPrices) Each(fn func(c Channel, price decimal.Decimal)) {
	for _, c := range allChannels {
		fn(c, *p.slot(c))
	}
}
