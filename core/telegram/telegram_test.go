package telegram

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/intakebot/core/config"
	"github.com/m3rciful/intakebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPoller(t *testing.T) {
	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, lp.Timeout)

	wh, ok := BuildPoller(PollerOptions{
		RunMode: " Webhook ",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example/hook"},
	}).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://bot.example/hook", wh.Endpoint.PublicURL)
}

func TestBuildHTTPClientCoversPollTimeout(t *testing.T) {
	c := BuildHTTPClient(25 * time.Second)
	assert.Equal(t, clientTimeout+25*time.Second, c.Timeout)

	rt, ok := c.Transport.(*dialRetryTransport)
	require.True(t, ok)
	base, ok := rt.base.(*http.Transport)
	require.True(t, ok)
	assert.Greater(t, base.ResponseHeaderTimeout, 25*time.Second)
}

type stubTransport struct {
	errs  []error
	calls int
}

func (s *stubTransport) RoundTrip(*http.Request) (*http.Response, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestDialRetryTransportRetriesOnlyDialFailures(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
	stub := &stubTransport{errs: []error{dial, dial}}
	rt := &dialRetryTransport{base: stub, retries: 3, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/bot1:x/sendMessage", strings.NewReader("chat_id=1"))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, stub.calls)

	reset := &net.OpError{Op: "read", Net: "tcp", Err: errors.New("reset")}
	stub = &stubTransport{errs: []error{reset}}
	rt.base = stub
	_, err = rt.RoundTrip(req)
	assert.ErrorIs(t, err, reset)
	assert.Equal(t, 1, stub.calls)
}

func TestPollTimeout(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.RunMode = coreconfig.RunModeLongpoll
	assert.Equal(t, 10*time.Second, pollTimeout(cfg))

	cfg.Telegram.LongPollTimeoutSeconds = 30
	assert.Equal(t, 30*time.Second, pollTimeout(cfg))

	cfg.Telegram.RunMode = coreconfig.RunModeWebhook
	assert.Zero(t, pollTimeout(cfg))
}

func TestRegistryListCommandsHidesAdminAndHidden(t *testing.T) {
	reg := NewRegistry()
	noop := func(tele.Context) error { return nil }
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Создать новый заказ"}))
	require.NoError(t, reg.RegisterCommand("/getid", commands.Command{Handler: noop, Description: "Получить ID чата", Aliases: []string{"id"}}))
	require.NoError(t, reg.RegisterCommand("/export", commands.Command{Handler: noop, Description: "export", AdminOnly: true, Hidden: true}))
	assert.Error(t, reg.RegisterCommand("nope", commands.Command{Handler: noop, Description: "no slash"}))
	assert.Error(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "again"}))
	assert.Error(t, reg.RegisterCommand("/empty", commands.Command{Description: "no handler"}))

	assert.Equal(t, []tele.Command{
		{Text: "/getid", Description: "Получить ID чата"},
		{Text: "/start", Description: "Создать новый заказ"},
	}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 3)

	key, _, ok := reg.LookupCommand("id")
	require.True(t, ok)
	assert.Equal(t, "/getid", key)
	key, _, ok = reg.LookupCommand("start")
	require.True(t, ok)
	assert.Equal(t, "/start", key)
}

func TestRegistryRejectsDuplicateCallback(t *testing.T) {
	reg := NewRegistry()
	noop := func(tele.Context) error { return nil }
	require.NoError(t, reg.RegisterCallback("done", noop))
	assert.Error(t, reg.RegisterCallback("done", noop))
	assert.Equal(t, []string{"done"}, reg.ListCallbacks())
}
