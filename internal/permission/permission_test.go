package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	cases := []struct {
		in   string
		want Tier
	}{
		{"view", TierView},
		{"view+add", TierViewAdd},
		{"view+add+update", TierViewAddUpdate},
		{"all", TierAll},
		{"  ALL ", TierAll},
		{"View+Add", TierViewAdd},
	}
	for _, tc := range cases {
		got, err := ParseTier(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseTier("admin")
	assert.ErrorIs(t, err, ErrUnknownTier)
	_, err = ParseTier("")
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestTierAllows(t *testing.T) {
	// full rule table from the permission model
	cases := []struct {
		tier   Tier
		add    bool
		update bool
		del    bool
	}{
		{TierView, false, false, false},
		{TierViewAdd, true, false, false},
		{TierViewAddUpdate, true, true, false},
		{TierAll, true, true, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.add, tc.tier.Allows(ActionAdd), "%s add", tc.tier)
		assert.Equal(t, tc.update, tc.tier.Allows(ActionUpdate), "%s update", tc.tier)
		assert.Equal(t, tc.del, tc.tier.Allows(ActionDelete), "%s delete", tc.tier)
	}
}

func TestTierRoundTrip(t *testing.T) {
	for _, tier := range []Tier{TierView, TierViewAdd, TierViewAddUpdate, TierAll} {
		parsed, err := ParseTier(tier.String())
		require.NoError(t, err)
		assert.Equal(t, tier, parsed)
	}
}

func TestAdminActorBypassesGate(t *testing.T) {
	a := AdminActor(7)
	assert.Equal(t, uint64(7), a.Owner())
	assert.Nil(t, a.StaffID())
	for _, action := range []Action{ActionAdd, ActionUpdate, ActionDelete} {
		assert.True(t, a.Can(action))
	}
}

func TestStaffActorResolvesOwner(t *testing.T) {
	a := StaffActor(12, 3, TierViewAdd)
	assert.Equal(t, uint64(3), a.Owner())
	require.NotNil(t, a.StaffID())
	assert.Equal(t, uint64(12), *a.StaffID())

	assert.True(t, a.Can(ActionAdd))
	assert.False(t, a.Can(ActionUpdate))
	assert.False(t, a.Can(ActionDelete))
}

func TestViewOnlyStaffDeniedEverything(t *testing.T) {
	a := StaffActor(5, 1, TierView)
	for _, action := range []Action{ActionAdd, ActionUpdate, ActionDelete} {
		assert.False(t, a.Can(action))
	}
}
