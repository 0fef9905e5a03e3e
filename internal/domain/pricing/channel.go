package pricing

// Channel identifies a downstream sales channel (shop) on the mall platform.
type Channel string

// Sales channels, grouped by their default pricing group.
const (
	Gmarket     Channel = "gmarket"
	Auction     Channel = "auction"
	ElevenSt    Channel = "eleven_st"
	Interpark   Channel = "interpark"
	Wemakeprice Channel = "wemakeprice"
	Tmon        Channel = "tmon"
	Lotteon     Channel = "lotteon"
	SSG         Channel = "ssg"

	Coupang    Channel = "coupang"
	Smartstore Channel = "smartstore"
	KakaoGift  Channel = "kakao_gift"
	Musinsa    Channel = "musinsa"
	Ohouse     Channel = "ohouse"
	Hmall      Channel = "hmall"
	GSShop     Channel = "gsshop"

	OwnMall      Channel = "own_mall"
	Cafe24       Channel = "cafe24"
	Godomall     Channel = "godomall"
	Makeshop     Channel = "makeshop"
	Imweb        Channel = "imweb"
	Sixshop      Channel = "sixshop"
	TossShopping Channel = "toss_shopping"
	KakaoStore   Channel = "kakao_store"
	Ably         Channel = "ably"
	Zigzag       Channel = "zigzag"
	WConcept     Channel = "wconcept"

	CJOnstyle         Channel = "cjonstyle"
	LotteHomeshopping Channel = "lotte_homeshopping"
	NSMall            Channel = "nsmall"
	ShinsegaeTV       Channel = "shinsegae_tv"
	KShop             Channel = "kshop"
)

// allChannels is the closed roster in canonical order. Storage columns, JSON
// output and registry listings all follow this order.
var allChannels = []Channel{
	Gmarket, Auction, ElevenSt, Interpark, Wemakeprice, Tmon, Lotteon, SSG,
	Coupang, Smartstore, KakaoGift, Musinsa, Ohouse, Hmall, GSShop,
	OwnMall, Cafe24, Godomall, Makeshop, Imweb, Sixshop, TossShopping, KakaoStore, Ably, Zigzag, WConcept,
	CJOnstyle, LotteHomeshopping, NSMall, ShinsegaeTV, KShop,
}

// AllChannels returns a copy of the channel roster in canonical order.
func AllChannels() []Channel {
	out := make([]Channel, len(allChannels))
	copy(out, allChannels)
	return out
}

// IsKnown reports whether c belongs to the roster.
func (c Channel) IsKnown() bool {
	for _, known := range allChannels {
		if c == known {
			return true
		}
	}
	return false
}

// Group is a pricing policy shared by every channel assigned to it.
type Group string

const (
	// GroupMarkup115 applies a 15% markup, rounded up to the thousand, minus 100.
	GroupMarkup115 Group = "MARKUP_115"
	// GroupMarkup105 applies a 5% markup, rounded up to the thousand, minus 100.
	GroupMarkup105 Group = "MARKUP_105"
	// GroupPassthrough uses the primary price unchanged.
	GroupPassthrough Group = "PASSTHROUGH"
	// GroupMarkupFlat100 adds a flat 100 to the primary price.
	GroupMarkupFlat100 Group = "MARKUP_FLAT_100"
)

var allGroups = []Group{GroupMarkup115, GroupMarkup105, GroupPassthrough, GroupMarkupFlat100}

// IsValid reports whether g is one of the four pricing groups.
func (g Group) IsValid() bool {
	switch g {
	case GroupMarkup115, GroupMarkup105, GroupPassthrough, GroupMarkupFlat100:
		return true
	}
	return false
}
