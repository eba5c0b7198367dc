package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func contextFrom(userID int64) tele.Context {
	return tele.NewContext(nil, tele.Update{
		ID:      1,
		Message: &tele.Message{Sender: &tele.User{ID: userID}, Chat: &tele.Chat{ID: userID}},
	})
}

func TestAdminOnlyMiddleware(t *testing.T) {
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID:  42,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	called := 0
	h := mw(func(tele.Context) error { called++; return nil })

	assert.NoError(t, h(contextFrom(42)))
	assert.NoError(t, h(contextFrom(7)))
	assert.Equal(t, 1, called)
	assert.Equal(t, 1, rejected)
}

func TestAdminOnlyMiddlewareDisabled(t *testing.T) {
	called := false
	h := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { called = true; return nil })
	assert.NoError(t, h(contextFrom(7)))
	assert.True(t, called)
}

func TestCountMessage(t *testing.T) {
	c := contextFrom(1)
	CountMessage(c, false)
	CountMessage(c, true)

	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
}

func TestRecoverMiddlewareTurnsPanicIntoError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic(errors.New("boom")) })
	var err error
	assert.NotPanics(t, func() { err = h(contextFrom(1)) })
	assert.ErrorContains(t, err, "boom")
}

func TestRateLimitMiddleware(t *testing.T) {
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	passed := 0
	h := mw(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(contextFrom(5)))
	require.NoError(t, h(contextFrom(5)))
	require.NoError(t, h(contextFrom(6)))
	cb := tele.NewContext(nil, tele.Update{ID: 2, Callback: &tele.Callback{Sender: &tele.User{ID: 5}}})
	require.NoError(t, h(cb))

	assert.Equal(t, 3, passed)
	assert.Equal(t, 1, limited)
}

func TestMessageMetricsMiddlewareCountsSends(t *testing.T) {
	var msgs int
	var kb bool
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		CountMessage(c, true)
		msgs, kb = GetCounters(c)
		return nil
	})
	require.NoError(t, h(contextFrom(1)))
	assert.Equal(t, 1, msgs)
	assert.True(t, kb)

	assert.True(t, hasKeyboard([]any{&tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}}}))
	assert.False(t, hasKeyboard([]any{tele.ModeHTML}))
}

func TestSeenUpdates(t *testing.T) {
	s := &seenUpdates{ttl: time.Minute, seen: make(map[int]time.Time)}
	assert.True(t, s.first(1))
	assert.False(t, s.first(1))
	assert.True(t, s.first(2))
}
