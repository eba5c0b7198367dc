package netutil

import (
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeout struct{}

func (timeout) Error() string   { return "timeout" }
func (timeout) Timeout() bool   { return true }
func (timeout) Temporary() bool { return false }

func TestClassification(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	read := &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset")}
	wrapped := &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}

	assert.True(t, DialFailed(dial))
	assert.True(t, DialFailed(wrapped))
	assert.True(t, DialFailed(&net.DNSError{Err: "no such host", Name: "api.telegram.org"}))
	assert.False(t, DialFailed(read))
	assert.False(t, DialFailed(errors.New("x")))

	assert.True(t, ShouldRetry(timeout{}))
	assert.True(t, ShouldRetry(wrapped))
	assert.False(t, ShouldRetry(read))
	assert.False(t, ShouldRetry(nil))
}
