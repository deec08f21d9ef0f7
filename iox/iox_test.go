package iox

import (
	"errors"
	"testing"
)

type countingCloser struct{ calls int }

func (c *countingCloser) Close() error {
	c.calls++
	return errors.New("close failed")
}

func TestDiscardClose(t *testing.T) {
	c := &countingCloser{}
	DiscardClose(c)
	if c.calls != 1 {
		t.Fatalf("Close calls = %d, want 1", c.calls)
	}
}

func TestCloseFunc(t *testing.T) {
	c := &countingCloser{}
	fn := CloseFunc(c)
	if c.calls != 0 {
		t.Fatal("Close ran before the returned func was invoked")
	}
	fn()
	fn()
	if c.calls != 2 {
		t.Fatalf("Close calls = %d, want 2", c.calls)
	}
}
