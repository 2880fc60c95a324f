package usage

// FeatureType identifies which AI feature consumed usage.
type FeatureType string

const (
	// FeatureSummary is AI summarization of a saved link.
	FeatureSummary FeatureType = "summary"
	// FeatureTags is automatic tag generation.
	FeatureTags FeatureType = "tags"
	// FeatureAnalysis is the deep-dive analysis ("AI explain"). Tracked
	// separately in stats because the UI surfaces it distinctly.
	FeatureAnalysis FeatureType = "analysis"
)

// String returns the string representation of the feature type.
func (f FeatureType) String() string {
	return string(f)
}

// IsValid checks if the feature type is one of the known features.
func (f FeatureType) IsValid() bool {
	switch f {
	case FeatureSummary, FeatureTags, FeatureAnalysis:
		return true
	}
	return false
}
