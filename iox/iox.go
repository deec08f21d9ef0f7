// Package iox provides small helpers for resource cleanup.
package iox

import "io"

// DiscardClose closes c, dropping the error. Meant for defer sites
// where a close failure is unactionable, such as a journal reader
// that has already been drained:
//
//	defer iox.DiscardClose(r)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc wraps c's Close in a no-arg, no-error function suitable
// for t.Cleanup registration:
//
//	t.Cleanup(iox.CloseFunc(r))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}
