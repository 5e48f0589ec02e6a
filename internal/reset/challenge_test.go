package reset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTTL     = 15 * time.Minute
	testLock    = 15 * time.Minute
	maxAttempts = 5
)

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ch, err := Challenge{}.Issue(now, "042137", testTTL)
	require.NoError(t, err)
	assert.False(t, ch.None())
	assert.Equal(t, HashCode("042137"), ch.CodeHash)
	require.NotNil(t, ch.ExpiresAt)
	assert.Equal(t, now.Add(testTTL), *ch.ExpiresAt)

	cleared, err := ch.Verify(now.Add(time.Minute), "042137", maxAttempts, testLock)
	require.NoError(t, err)
	assert.True(t, cleared.None())
	assert.Nil(t, cleared.ExpiresAt)
	assert.Nil(t, cleared.LockedUntil)
}

func TestVerifyWithoutIssue(t *testing.T) {
	now := time.Now().UTC()
	_, err := Challenge{}.Verify(now, "123456", maxAttempts, testLock)
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestExpiredCodeRejectedAndCleared(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ch, err := Challenge{}.Issue(now, "314159", testTTL)
	require.NoError(t, err)

	later := now.Add(testTTL + time.Second)
	next, err := ch.Verify(later, "314159", maxAttempts, testLock)
	assert.ErrorIs(t, err, ErrExpired)
	// stored fields must be wiped even though the code matched
	assert.True(t, next.None())
	assert.Nil(t, next.ExpiresAt)
	assert.Zero(t, next.Attempts)
}

func TestLockoutAfterMaxAttempts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ch, err := Challenge{}.Issue(now, "271828", testTTL)
	require.NoError(t, err)

	for i := 1; i < maxAttempts; i++ {
		ch, err = ch.Verify(now, "000000", maxAttempts, testLock)
		assert.ErrorIs(t, err, ErrMismatch, "attempt %d", i)
		assert.Equal(t, i, ch.Attempts)
		assert.False(t, ch.LockedAt(now))
	}

	// final wrong attempt trips the lock and discards the code
	ch, err = ch.Verify(now, "000000", maxAttempts, testLock)
	assert.ErrorIs(t, err, ErrMismatch)
	assert.True(t, ch.LockedAt(now))
	assert.True(t, ch.None())
	require.NotNil(t, ch.LockedUntil)
	assert.Equal(t, now.Add(testLock), *ch.LockedUntil)

	// while locked, verification and re-issue are both refused
	_, err = ch.Verify(now.Add(time.Minute), "271828", maxAttempts, testLock)
	assert.ErrorIs(t, err, ErrLocked)
	_, err = ch.Issue(now.Add(time.Minute), "999999", testTTL)
	assert.ErrorIs(t, err, ErrLocked)

	// after the lock window passes a new code can be issued again
	after := now.Add(testLock + time.Second)
	fresh, err := ch.Issue(after, "999999", testTTL)
	require.NoError(t, err)
	assert.False(t, fresh.None())
	assert.Zero(t, fresh.Attempts)
}

func TestReissueReplacesCodeAndResetsAttempts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ch, err := Challenge{}.Issue(now, "111111", testTTL)
	require.NoError(t, err)

	ch, err = ch.Verify(now, "222222", maxAttempts, testLock)
	assert.ErrorIs(t, err, ErrMismatch)
	assert.Equal(t, 1, ch.Attempts)

	ch, err = ch.Issue(now.Add(time.Minute), "333333", testTTL)
	require.NoError(t, err)
	assert.Zero(t, ch.Attempts)

	// old code no longer verifies
	_, err = ch.Verify(now.Add(2*time.Minute), "111111", maxAttempts, testLock)
	assert.ErrorIs(t, err, ErrMismatch)

	cleared, err := ch.Verify(now.Add(2*time.Minute), "333333", maxAttempts, testLock)
	require.NoError(t, err)
	assert.True(t, cleared.None())
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
