// Package netutil classifies transport errors from the Telegram API client.
package netutil

import (
	"errors"
	"net"
	"net/url"
)

// ShouldRetry reports whether err looks transient: a timeout or a failed
// dial. Only idempotent calls should be retried on it.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return DialFailed(err)
}

// DialFailed reports whether err happened before the request reached the
// server, so any call may be repeated safely.
func DialFailed(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && urlErr.Err != err {
		return DialFailed(urlErr.Err)
	}
	return false
}
