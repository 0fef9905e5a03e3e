package pricing

import "fmt"

// ConfigurationError reports an invalid channel-to-group table. It is raised
// while building a Registry, never while pricing a request.
type ConfigurationError struct {
	Channel Channel
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Channel == "" {
		return fmt.Sprintf("pricing configuration: %s", e.Reason)
	}
	return fmt.Sprintf("pricing configuration: channel %q: %s", e.Channel, e.Reason)
}

// Assignment binds a channel to its pricing group.
type Assignment struct {
	Channel Channel
	Group   Group
}

// DefaultAssignments returns the built-in channel grouping.
func DefaultAssignments() []Assignment {
	groups := []struct {
		group    Group
		channels []Channel
	}{
		{GroupMarkup115, []Channel{Gmarket, Auction, ElevenSt, Interpark, Wemakeprice, Tmon, Lotteon, SSG}},
		{GroupMarkup105, []Channel{Coupang, Smartstore, KakaoGift, Musinsa, Ohouse, Hmall, GSShop}},
		{GroupPassthrough, []Channel{
			OwnMall, Cafe24, Godomall, Makeshop, Imweb, Sixshop,
			TossShopping, KakaoStore, Ably, Zigzag, WConcept,
		}},
		{GroupMarkupFlat100, []Channel{CJOnstyle, LotteHomeshopping, NSMall, ShinsegaeTV, KShop}},
	}

	var out []Assignment
	for _, g := range groups {
		for _, c := range g.channels {
			out = append(out, Assignment{Channel: c, Group: g.group})
		}
	}
	return out
}

// Registry is the immutable channel-to-group mapping.
type Registry struct {
	groupOf  map[Channel]Group
	channels map[Group][]Channel
}

// NewRegistry validates assignments and builds a Registry. Every roster
// channel must be assigned exactly once to one of the four groups.
func NewRegistry(assignments []Assignment) (*Registry, error) {
	r := &Registry{
		groupOf:  make(map[Channel]Group, len(allChannels)),
		channels: make(map[Group][]Channel, len(allGroups)),
	}

	var probe ChannelPrices
	for _, a := range assignments {
		if !a.Channel.IsKnown() {
			return nil, &ConfigurationError{Channel: a.Channel, Reason: "unknown channel"}
		}
		if !a.Group.IsValid() {
			return nil, &ConfigurationError{Channel: a.Channel, Reason: fmt.Sprintf("unknown group %q", a.Group)}
		}
		if prev, dup := r.groupOf[a.Channel]; dup {
			return nil, &ConfigurationError{
				Channel: a.Channel,
				Reason:  fmt.Sprintf("assigned to both %s and %s", prev, a.Group),
			}
		}
		if probe.slot(a.Channel) == nil {
			return nil, &ConfigurationError{Channel: a.Channel, Reason: "no price slot"}
		}
		r.groupOf[a.Channel] = a.Group
	}

	// Group listings follow roster order, not assignment order.
	for _, c := range allChannels {
		g, ok := r.groupOf[c]
		if !ok {
			return nil, &ConfigurationError{Channel: c, Reason: "not assigned to any group"}
		}
		r.channels[g] = append(r.channels[g], c)
	}

	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on an invalid table.
func MustNewRegistry(assignments []Assignment) *Registry {
	r, err := NewRegistry(assignments)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry builds the registry from DefaultAssignments.
func DefaultRegistry() *Registry {
	return MustNewRegistry(DefaultAssignments())
}

// GroupOf returns the group of c.
func (r *Registry) GroupOf(c Channel) (Group, bool) {
	g, ok := r.groupOf[c]
	return g, ok
}

// ChannelsInGroup returns the channels assigned to g in roster order.
func (r *Registry) ChannelsInGroup(g Group) []Channel {
	src := r.channels[g]
	out := make([]Channel, len(src))
	copy(out, src)
	return out
}

// Channels returns every registered channel in roster order.
func (r *Registry) Channels() []Channel {
	return AllChannels()
}

// Groups returns the four pricing groups.
func (r *Registry) Groups() []Group {
	out := make([]Group, len(allGroups))
	copy(out, allGroups)
	return out
}
