// Package pricing derives per-channel sale prices from a base product price.
//
// Every price is computed in exact decimal arithmetic. A base price yields one
// primary price through a two-tier rounding rule; each channel price is then a
// function of the primary price and the channel's pricing group.
package pricing

import "github.com/shopspring/decimal"

var (
	hundred       = decimal.NewFromInt(100)
	thousand      = decimal.NewFromInt(1000)
	twoThousand   = decimal.NewFromInt(2000)
	two           = decimal.NewFromInt(2)
	tierThreshold = decimal.NewFromInt(10000)
	markup115     = decimal.RequireFromString("1.15")
	markup105     = decimal.RequireFromString("1.05")
)

// Derivation is the full price vector computed from one base price.
type Derivation struct {
	Base     decimal.Decimal
	Primary  decimal.Decimal
	Channels ChannelPrices
}

// Engine applies the channel grouping to derive channel prices. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	registry *Registry
}

// NewEngine returns an Engine that prices channels according to registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Registry returns the registry the engine prices against.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// PrimaryPrice computes the primary derived price. Bases whose value plus 100
// stays strictly below 10000 take the +2000 tier, all others the +1000 tier.
func PrimaryPrice(base decimal.Decimal) decimal.Decimal {
	offset := thousand
	if base.Add(hundred).LessThan(tierThreshold) {
		offset = twoThousand
	}
	return RoundUpToThousand(base.Mul(two).Add(offset)).Sub(hundred)
}

// GroupPrice applies the formula of group g to the primary price.
func GroupPrice(g Group, primary decimal.Decimal) decimal.Decimal {
	switch g {
	case GroupMarkup115:
		return RoundUpToThousand(primary.Mul(markup115)).Sub(hundred)
	case GroupMarkup105:
		return RoundUpToThousand(primary.Mul(markup105)).Sub(hundred)
	case GroupMarkupFlat100:
		return primary.Add(hundred)
	default:
		return primary
	}
}

// Derive computes the primary price and every channel price for base.
func (e *Engine) Derive(base decimal.Decimal) Derivation {
	primary := PrimaryPrice(base)

	// Four groups, so each formula runs once regardless of channel count.
	byGroup := make(map[Group]decimal.Decimal, len(allGroups))
	for _, g := range allGroups {
		byGroup[g] = GroupPrice(g, primary)
	}

	d := Derivation{Base: base, Primary: primary}
	for _, c := range allChannels {
		g, _ := e.registry.GroupOf(c)
		d.Channels.Set(c, byGroup[g])
	}
	return d
}
