package page

import "errors"

// Output receives pages pushed by an upstream stage. Finish flushes anything
// buffered; Close releases resources and must be safe to call after a failed
// or aborted stream.
type Output interface {
	Add(Page) error
	Finish() error
	Close() error
}

// ErrOutputClosed is returned by Collector after Close.
var ErrOutputClosed = errors.New("page: output closed")

// Collector is an in-memory Output.
type Collector struct {
	Pages    []Page
	Finished bool
	Closed   bool
}

// Add stores the page.
func (c *Collector) Add(p Page) error {
	if c.Closed {
		return ErrOutputClosed
	}
	c.Pages = append(c.Pages, p)
	return nil
}

// Finish marks the collector finished.
func (c *Collector) Finish() error {
	if c.Closed {
		return ErrOutputClosed
	}
	c.Finished = true
	return nil
}

// Close marks the collector closed.
func (c *Collector) Close() error {
	c.Closed = true
	return nil
}

// Records flattens all collected pages.
func (c *Collector) Records() []Record {
	var out []Record
	for _, p := range c.Pages {
		out = append(out, p...)
	}
	return out
}
