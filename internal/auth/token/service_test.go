package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/task-manager/backend/internal/common/clock"
)

var (
	testSecret  = strings.Repeat("s", 32)
	otherSecret = strings.Repeat("o", 32)
	epoch       = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T, secret string, clk clock.Clock) *Service {
	t.Helper()
	svc, err := NewService(secret, 7*24*time.Hour, clk)
	require.NoError(t, err)
	return svc
}

func TestNewService_RejectsShortSecret(t *testing.T) {
	_, err := NewService("short", time.Hour, clock.NewRealClock())
	assert.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewService("", time.Hour, clock.NewRealClock())
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestService_IssueVerifyRoundTrip(t *testing.T) {
	clk := clock.NewMockClock(epoch)
	svc := newTestService(t, testSecret, clk)

	tok, expiresAt, err := svc.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(7*24*time.Hour), expiresAt)

	sub, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestService_IssueRejectsEmptySubject(t *testing.T) {
	svc := newTestService(t, testSecret, clock.NewMockClock(epoch))
	_, _, err := svc.Issue("")
	assert.Error(t, err)
}

func TestService_ExpiryBoundary(t *testing.T) {
	clk := clock.NewMockClock(epoch)
	svc := newTestService(t, testSecret, clk)

	tok, expiresAt, err := svc.Issue("user-1")
	require.NoError(t, err)

	clk.SetTime(expiresAt.Add(-time.Second))
	sub, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	clk.SetTime(expiresAt)
	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	clk.SetTime(expiresAt.Add(time.Hour))
	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RejectsForeignKey(t *testing.T) {
	clk := clock.NewMockClock(epoch)
	issuer := newTestService(t, otherSecret, clk)
	verifier := newTestService(t, testSecret, clk)

	tok, _, err := issuer.Issue("user-1")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RejectsOtherAlgorithms(t *testing.T) {
	clk := clock.NewMockClock(epoch)
	svc := newTestService(t, testSecret, clk)

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(epoch),
		ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RejectsMissingClaims(t *testing.T) {
	clk := clock.NewMockClock(epoch)
	svc := newTestService(t, testSecret, clk)

	cases := map[string]jwt.RegisteredClaims{
		"no subject": {
			IssuedAt:  jwt.NewNumericDate(epoch),
			ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
		},
		"no expiry": {
			Subject:  "user-1",
			IssuedAt: jwt.NewNumericDate(epoch),
		},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			require.NoError(t, err)
			_, err = svc.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestService_RejectsMalformedAndTampered(t *testing.T) {
	clk := clock.NewMockClock(epoch)
	svc := newTestService(t, testSecret, clk)

	tok, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	forged, _, err := svc.Issue("user-2")
	require.NoError(t, err)
	spliced := parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]

	for _, bad := range []string{"", "garbage", "a.b.c", tok + "x", spliced} {
		_, err := svc.Verify(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", bad)
	}
}

func TestService_TokensAreDistinct(t *testing.T) {
	svc := newTestService(t, testSecret, clock.NewMockClock(epoch))

	first, _, err := svc.Issue("user-1")
	require.NoError(t, err)
	second, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
