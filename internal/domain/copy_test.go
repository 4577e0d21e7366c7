package domain

import (
	"strings"
	"testing"
)

func TestNormalizeCopyBackfillsArity(t *testing.T) {
	c := &PosterCopy{
		HookHeadline: "Big Sound, Small Box",
		Features:     []string{"Noise cancelling", "  ", "20h battery"},
		TrustBadges:  []string{"Warranty"},
	}
	NormalizeCopy(c)
	if len(c.Features) != CopyFeatureCount {
		t.Fatalf("features arity = %d, want %d", len(c.Features), CopyFeatureCount)
	}
	if len(c.TrustBadges) != CopyTrustBadgeCount {
		t.Fatalf("trust badges arity = %d, want %d", len(c.TrustBadges), CopyTrustBadgeCount)
	}
	for i, f := range c.Features {
		if strings.TrimSpace(f) == "" {
			t.Fatalf("feature %d is empty", i)
		}
	}
	for i, b := range c.TrustBadges {
		if strings.TrimSpace(b) == "" {
			t.Fatalf("trust badge %d is empty", i)
		}
	}
	if c.Features[0] != "Noise cancelling" || c.Features[1] != "20h battery" {
		t.Fatalf("model features must be kept in order: %#v", c.Features)
	}
	if c.CTAText == "" {
		t.Fatalf("empty CTA must be back-filled")
	}
}

func TestNormalizeCopyTruncatesOverlongLists(t *testing.T) {
	c := &PosterCopy{
		Features:    []string{"a", "b", "c", "d", "e", "f"},
		TrustBadges: []string{"1", "2", "3", "4"},
		CTAText:     "Buy",
	}
	NormalizeCopy(c)
	if len(c.Features) != CopyFeatureCount || len(c.TrustBadges) != CopyTrustBadgeCount {
		t.Fatalf("overlong lists not truncated: %d/%d", len(c.Features), len(c.TrustBadges))
	}
	if c.CTAText != "Buy" {
		t.Fatalf("existing CTA must be preserved, got %q", c.CTAText)
	}
}

func TestLandingContentFromCopy(t *testing.T) {
	if LandingContentFromCopy(nil, "") != nil {
		t.Fatalf("nil copy must map to nil content")
	}
	c := &PosterCopy{HookHeadline: "h", Subheadline: "s", CTAText: "go"}
	NormalizeCopy(c)
	content := LandingContentFromCopy(c, "4.9/5 from 1,200 buyers")
	if content.Headline != "h" || content.CTAText != "go" {
		t.Fatalf("content mapping mismatch: %+v", content)
	}
	if len(content.Features) != CopyFeatureCount {
		t.Fatalf("content features arity = %d", len(content.Features))
	}
	if content.SocialProof == "" {
		t.Fatalf("social proof lost in mapping")
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(20000, "id"); got != "Rp 20.000" {
		t.Fatalf("id price = %q", got)
	}
	if got := FormatPrice(2000, "en"); got != "$2,000" {
		t.Fatalf("en price = %q", got)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		ok       bool
	}{
		{JobStatusDraft, JobStatusGenerating, true},
		{JobStatusGenerating, JobStatusReady, true},
		{JobStatusGenerating, JobStatusArchived, true},
		{JobStatusDraft, JobStatusArchived, true},
		{JobStatusReady, JobStatusArchived, false},
		{JobStatusArchived, JobStatusGenerating, false},
		{JobStatusReady, JobStatusGenerating, false},
		{JobStatusDraft, JobStatusReady, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}
