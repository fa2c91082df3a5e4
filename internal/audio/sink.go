package audio

import (
	"errors"
	"time"
)

// Sink consumes decoded PCM blocks in stream order.
// Write may block until the output has room; that is the playback
// back-pressure point. Close releases the output.
type Sink interface {
	Write(block []int16) error
	Close() error
}

// OpenSinkFunc opens a fresh Sink for one track.
type OpenSinkFunc func() (Sink, error)

// Discard accepts and drops every block without blocking.
var Discard Sink = discard{}

type discard struct{}

func (discard) Write([]int16) error { return nil }
func (discard) Close() error        { return nil }

type multiSink struct {
	sinks []Sink
}

// MultiSink duplicates every block to all sinks in order, like io.MultiWriter.
// Close closes all of them and joins their errors.
func MultiSink(sinks ...Sink) Sink {
	all := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if m, ok := s.(*multiSink); ok {
			all = append(all, m.sinks...)
			continue
		}
		all = append(all, s)
	}
	return &multiSink{sinks: all}
}

func (m *multiSink) Write(block []int16) error {
	for _, s := range m.sinks {
		if err := s.Write(block); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

type pacedSink struct {
	next   Sink
	ticker *time.Ticker
}

// Paced forwards at most one block per interval to next, blocking the writer
// in between. It stands in for a device clock when nothing else provides one.
func Paced(next Sink, interval time.Duration) Sink {
	return &pacedSink{next: next, ticker: time.NewTicker(interval)}
}

func (p *pacedSink) Write(block []int16) error {
	<-p.ticker.C
	return p.next.Write(block)
}

func (p *pacedSink) Close() error {
	p.ticker.Stop()
	return p.next.Close()
}
