package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrleolava/job-search-command-center/internal/detect"
)

func strPtr(s string) *string { return &s }

func TestCandidateSlugsMultiWordWithSuffix(t *testing.T) {
	got := detect.CandidateSlugs("BlueFlame AI", strPtr("https://www.blueflame.ai/about"))
	assert.Equal(t, []string{"blueflameai", "blueflame-ai", "blueflame_ai", "blueflame"}, got)
}

func TestCandidateSlugsSingleWord(t *testing.T) {
	assert.Equal(t, []string{"stripe"}, detect.CandidateSlugs("Stripe", nil))
}

func TestCandidateSlugsStripsCorporateSuffix(t *testing.T) {
	got := detect.CandidateSlugs("Acme Labs", nil)
	assert.Equal(t, []string{"acmelabs", "acme-labs", "acme_labs", "acme"}, got)
}

func TestCandidateSlugsAddsDistinctDomain(t *testing.T) {
	got := detect.CandidateSlugs("Example", strPtr("https://www.examplehq.com/careers"))
	assert.Equal(t, []string{"example", "examplehq"}, got)
}

func TestCandidateSlugsDropsTooShort(t *testing.T) {
	assert.Empty(t, detect.CandidateSlugs("A", nil))
}

func TestCandidateSlugsDomainWithoutScheme(t *testing.T) {
	got := detect.CandidateSlugs("Orbit", strPtr("orbitplatform.com"))
	assert.Equal(t, []string{"orbit", "orbitplatform"}, got)
}
