// Package sse implements a minimal Server-Sent Events frame decoder: it
// turns a growing byte stream into discrete event records, each carrying
// an event type and a JSON payload string.
package sse

import "strings"

// Event is one decoded SSE record.
type Event struct {
	// Type is the value of the event: line, or "" if the record carried
	// none.
	Type string
	// Data is the concatenation of every data: line in the record,
	// joined by newlines.
	Data string
}

// Decoder buffers raw bytes and splits them into Events on blank-line
// separators. It is not safe for concurrent use.
type Decoder struct {
	buf strings.Builder
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends raw bytes to the internal buffer. Invalid UTF-8 sequences
// are replaced, matching the text-safety the source stream is expected to
// provide.
func (d *Decoder) Feed(chunk []byte) {
	d.buf.WriteString(strings.ToValidUTF8(string(chunk), "�"))
}

// Drain scans the buffer for blank-line-terminated records and returns
// every complete event found. The trailing partial record, if any, is
// left in the buffer for the next Drain call. Empty records (whitespace
// only) are discarded rather than returned.
func (d *Decoder) Drain() []Event {
	var events []Event
	remaining := d.buf.String()

	for {
		idx := strings.Index(remaining, "\n\n")
		if idx < 0 {
			break
		}
		raw := remaining[:idx]
		remaining = remaining[idx+2:]

		if strings.TrimSpace(raw) == "" {
			continue
		}
		events = append(events, parseEvent(raw))
	}

	d.buf.Reset()
	d.buf.WriteString(remaining)
	return events
}

// parseEvent splits a single record's lines into event: and data: fields.
func parseEvent(raw string) Event {
	var ev Event
	var dataLines []string

	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, "event:"):
			ev.Type = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data:"))
		}
	}

	// Leading space after "data:" is conventional in the SSE grammar;
	// trim exactly one, the way most producers emit it.
	for i, l := range dataLines {
		dataLines[i] = strings.TrimPrefix(l, " ")
	}
	ev.Data = strings.Join(dataLines, "\n")
	return ev
}

// IsDone reports whether ev is the OpenAI stream's terminal sentinel,
// a lone "data: [DONE]" record that callers must not attempt to parse as
// JSON.
func IsDone(ev Event) bool {
	return strings.TrimSpace(ev.Data) == "[DONE]"
}
