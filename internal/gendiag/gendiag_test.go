package gendiag

import (
	"bytes"
	"strings"
	"testing"
)

func Test_Logger_writesAndRetains(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, 2)

	l.Infof("convert", "lowered %d nonterminals", 3)
	l.Warnf("lrgen", "state %d has a conflict", 5)
	l.Errorf("glr", "parse failed at token %d", 7)

	if !strings.Contains(buf.String(), "lowered 3 nonterminals") {
		t.Errorf("expected log output to contain the Infof message, got %q", buf.String())
	}

	events := l.Events()
	if len(events) != 2 {
		t.Fatalf("expected ring capacity 2 to retain 2 events, got %d", len(events))
	}
	if events[0].Stage != "lrgen" || events[1].Stage != "glr" {
		t.Errorf("expected the oldest retained event to be dropped, got stages %q, %q", events[0].Stage, events[1].Stage)
	}
}

func Test_Logger_zeroCapacityDisablesRetention(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, 0)

	l.Debugf("convert", "noop")

	if events := l.Events(); events != nil {
		t.Errorf("expected nil Events with zero capacity, got %v", events)
	}
}
