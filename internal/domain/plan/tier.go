package plan

// Tier identifies a subscription plan tier.
type Tier string

const (
	TierFree Tier = "free"
	TierPlus Tier = "plus"
	TierPro  Tier = "pro"
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	return string(t)
}

// IsValid checks if the tier value is one of the known tiers.
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierPlus, TierPro:
		return true
	}
	return false
}

// ParseTier converts a string to a Tier, falling back to free for unknown
// values. Plan gating must always be computable, so unknown input degrades
// to the most restrictive tier instead of failing.
func ParseTier(s string) Tier {
	t := Tier(s)
	if !t.IsValid() {
		return TierFree
	}
	return t
}
