// Package ledger holds the balance arithmetic shared by member
// registration and renewal. The rules live here, away from the
// database, so they can be checked directly.
package ledger

// AdmissionDue computes the outstanding balance at registration:
// admission fee plus plan price, minus what was collected and the
// one-time discount.
func AdmissionDue(admission, planAmount, collected, discount int64) int64 {
	return admission + planAmount - collected - discount
}

// RenewalDue computes the outstanding balance after a renewal. The new
// plan price is added onto the existing balance and the freshly
// collected amount subtracted. The admission-time discount is not
// re-applied.
func RenewalDue(currentDue, planAmount, collected int64) int64 {
	return currentDue + planAmount - collected
}
