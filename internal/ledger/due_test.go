package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmissionDue(t *testing.T) {
	// worked example: admission 200, plan 500, collected 300, discount 50
	assert.Equal(t, int64(350), AdmissionDue(200, 500, 300, 50))

	// paying everything up front leaves no due
	assert.Equal(t, int64(0), AdmissionDue(200, 500, 700, 0))

	// overpayment yields a negative (credit) balance
	assert.Equal(t, int64(-100), AdmissionDue(0, 500, 600, 0))

	// discount alone can clear the plan price
	assert.Equal(t, int64(0), AdmissionDue(0, 500, 0, 500))
}

func TestRenewalDue(t *testing.T) {
	assert.Equal(t, int64(550), RenewalDue(350, 500, 300))
	assert.Equal(t, int64(0), RenewalDue(0, 500, 500))

	// carried-over credit offsets the new plan price
	assert.Equal(t, int64(400), RenewalDue(-100, 500, 0))
}

func TestRenewalIgnoresDiscount(t *testing.T) {
	// a member admitted with a discount renews; the discount must not
	// lower the renewal balance again
	due := AdmissionDue(200, 500, 300, 50)
	assert.Equal(t, int64(350), due)

	renewed := RenewalDue(due, 500, 500)
	assert.Equal(t, int64(350), renewed)
}
