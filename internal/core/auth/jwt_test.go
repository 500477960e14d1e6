package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"department-graphql/internal/core/apperr"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newJWTer(secret string, clk *fakeClock) *JWTer {
	return &JWTer{
		Secret: []byte(secret),
		Issuer: "department-graphql",
		TTL:    time.Hour,
		Now:    clk.Now,
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	j := newJWTer("s3cr3t", clk)

	tok, exp, err := j.Issue("u-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, clk.t.Add(time.Hour), exp)

	c, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID())
	assert.Equal(t, "alice", c.Username)
}

func TestVerifyExpired(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	j := newJWTer("s3cr3t", clk)

	tok, _, err := j.Issue("u-1", "alice")
	require.NoError(t, err)

	clk.t = clk.t.Add(time.Hour + time.Second)
	_, err = j.Verify(tok)
	assert.True(t, errors.Is(err, apperr.ErrTokenExpired), "got %v", err)
}

func TestVerifyWrongSecret(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	tok, _, err := newJWTer("one", clk).Issue("u-1", "alice")
	require.NoError(t, err)

	_, err = newJWTer("two", clk).Verify(tok)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken), "got %v", err)
}

func TestVerifyMalformedAndMissing(t *testing.T) {
	j := newJWTer("s3cr3t", &fakeClock{t: time.Now()})

	_, err := j.Verify("not.a.jwt")
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	_, err = j.Verify("")
	assert.True(t, errors.Is(err, apperr.ErrMissingToken))
}

func TestFromHeader(t *testing.T) {
	j := newJWTer("s3cr3t", &fakeClock{t: time.Now()})
	tok, _, err := j.Issue("u-9", "bob")
	require.NoError(t, err)

	c, err := j.FromHeader("Bearer " + tok)
	require.NoError(t, err)
	assert.Equal(t, "u-9", c.UserID())

	_, err = j.FromHeader("")
	assert.True(t, errors.Is(err, apperr.ErrMissingToken))

	_, err = j.FromHeader("Basic abc")
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestCallerFrom(t *testing.T) {
	_, err := CallerFrom(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrMissingToken))

	ctx := WithClaims(context.Background(), &Claims{Username: "alice"})
	ctx = WithAuthError(ctx, apperr.New(apperr.TokenExpired, "token expired"))
	_, err = CallerFrom(ctx)
	assert.True(t, errors.Is(err, apperr.ErrTokenExpired))

	j := newJWTer("s3cr3t", &fakeClock{t: time.Now()})
	tok, _, err := j.Issue("u-2", "carol")
	require.NoError(t, err)
	claims, err := j.Verify(tok)
	require.NoError(t, err)

	caller, err := CallerFrom(WithClaims(context.Background(), claims))
	require.NoError(t, err)
	assert.Equal(t, Caller{ID: "u-2", Username: "carol"}, caller)
}
