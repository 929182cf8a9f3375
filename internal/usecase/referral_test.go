package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

func TestApplyReferralCreditsOnlyMatchedAffiliate(t *testing.T) {
	affiliates := testSeed().Affiliates

	res := ApplyReferral(249000, " partner1", affiliates)

	require.True(t, res.Applied)
	assert.Equal(t, int64(24900), res.Commission)
	assert.Equal(t, partnerID, res.AffiliateID)
	assert.Equal(t, "Partner", res.AffiliateName)
	assert.Equal(t, int64(174900), res.Affiliates[0].TotalEarnings)
	assert.Equal(t, affiliates[1], res.Affiliates[1])

	// the input collection is untouched
	assert.Equal(t, int64(150000), affiliates[0].TotalEarnings)
}

func TestApplyReferralNoMatch(t *testing.T) {
	affiliates := testSeed().Affiliates
	affiliates[1].IsActive = false

	for _, code := range []string{"", "NOBODY", "other"} {
		res := ApplyReferral(249000, code, affiliates)
		assert.False(t, res.Applied, code)
		assert.Zero(t, res.Commission, code)
		assert.Equal(t, affiliates, res.Affiliates, code)
	}
}

func TestCreditAffiliate(t *testing.T) {
	affiliates := testSeed().Affiliates

	next, ok := CreditAffiliate(affiliates, otherID, 500)
	require.True(t, ok)
	assert.Equal(t, int64(1500), next[1].TotalEarnings)
	assert.Equal(t, int64(1000), affiliates[1].TotalEarnings)

	same, ok := CreditAffiliate(affiliates, "missing", 500)
	assert.False(t, ok)
	assert.Equal(t, affiliates, same)
}

func TestCommissionZeroRate(t *testing.T) {
	assert.Zero(t, Commission(249000, domain.Affiliate{CommissionRate: 0}))
}

func TestApplyReferralNeverCreditsNonPositiveCommission(t *testing.T) {
	affiliates := testSeed().Affiliates

	res := ApplyReferral(-9_900_000, "PARTNER1", affiliates)
	assert.False(t, res.Applied)
	assert.Zero(t, res.Commission)
	assert.Equal(t, affiliates, res.Affiliates)

	affiliates[0].CommissionRate = 0
	res = ApplyReferral(249000, "PARTNER1", affiliates)
	assert.False(t, res.Applied)
	assert.Equal(t, int64(150000), res.Affiliates[0].TotalEarnings)
}
