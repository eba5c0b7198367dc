// Package state keeps per-chat conversation state in memory.
// It is domain-agnostic: values are stored by key and each key can be locked
// so that updates of the same chat are applied one at a time.
package state
