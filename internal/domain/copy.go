package domain

import "strings"

const (
	// CopyFeatureCount and CopyTrustBadgeCount are the arities every
	// PosterCopy must satisfy after normalization.
	CopyFeatureCount    = 4
	CopyTrustBadgeCount = 3
)

// Canonical back-fill strings used when a model returns short lists.
var (
	canonFeatures = []string{
		"Premium quality materials",
		"Carefully made in small batches",
		"Loved by repeat customers",
		"Ready to ship today",
	}
	canonTrustBadges = []string{
		"Secure checkout",
		"Fast delivery",
		"Easy returns",
	}
)

// PosterCopy is the normalized marketing copy contract shared by both
// generation flows.
type PosterCopy struct {
	HookHeadline string   `json:"hook_headline"`
	Subheadline  string   `json:"subheadline"`
	Problem      string   `json:"problem"`
	Solution     string   `json:"solution"`
	Features     []string `json:"features"`
	TrustBadges  []string `json:"trust_badges"`
	CTAText      string   `json:"cta_text"`
}

// NormalizeCopy trims and back-fills the copy so it always satisfies the
// arity invariant: exactly 4 features and 3 trust badges, each non-empty.
func NormalizeCopy(c *PosterCopy) {
	if c == nil {
		return
	}
	c.Features = padList(cleanList(c.Features), canonFeatures, CopyFeatureCount)
	c.TrustBadges = padList(cleanList(c.TrustBadges), canonTrustBadges, CopyTrustBadgeCount)
	if strings.TrimSpace(c.CTAText) == "" {
		c.CTAText = "Order Now"
	}
}

// LandingContentFromCopy maps poster copy onto the landing page content
// shape.
func LandingContentFromCopy(c *PosterCopy, socialProof string) *LandingContent {
	if c == nil {
		return nil
	}
	return &LandingContent{
		Headline:    c.HookHeadline,
		Subheadline: c.Subheadline,
		Features:    c.Features,
		CTAText:     c.CTAText,
		SocialProof: socialProof,
		Problem:     c.Problem,
		Solution:    c.Solution,
		TrustBadges: c.TrustBadges,
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func padList(in, canon []string, want int) []string {
	if len(in) > want {
		return in[:want]
	}
	for i := len(in); i < want; i++ {
		in = append(in, canon[i%len(canon)])
	}
	return in
}
