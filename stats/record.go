// Package stats derives per-stylesheet statistics and reports them as CSV.
package stats

import (
	"fmt"
	"regexp"
	"strconv"
)

// digestLength is number of characters of raw content kept for failed files.
const digestLength = 50

// Header lists CSV columns in Record field order.
var Header = []string{
	"eventId",
	"length",
	"emptyStylesheet",
	"backgroundSelectors",
	"colorSelectors",
	"backgroundIsOverriddenWithImage",
	"error",
	"digest",
	"errorStack",
}

// Record holds statistics for a single input file.
type Record struct {
	EventID                         string
	Length                          int
	EmptyStylesheet                 int
	BackgroundSelectors             int
	ColorSelectors                  int
	BackgroundIsOverriddenWithImage int
	Error                           int
	Digest                          string
	ErrorStack                      string
}

// NewRecord returns baseline record with all counters zeroed.
func NewRecord(eventID string, length int) Record {
	return Record{EventID: eventID, Length: length}
}

// Failed returns copy of the record describing parse failure of content.
func (r Record) Failed(content string, err error) Record {
	r.Error = 1
	r.Digest = digest(content)
	if err != nil {
		r.ErrorStack = err.Error()
	}
	return r
}

// Row returns record values formatted for CSV in Header order.
func (r Record) Row() []string {
	return []string{
		r.EventID,
		strconv.Itoa(r.Length),
		strconv.Itoa(r.EmptyStylesheet),
		strconv.Itoa(r.BackgroundSelectors),
		strconv.Itoa(r.ColorSelectors),
		strconv.Itoa(r.BackgroundIsOverriddenWithImage),
		strconv.Itoa(r.Error),
		r.Digest,
		r.ErrorStack,
	}
}

func digest(s string) string {
	n := 0
	for i := range s {
		if n == digestLength {
			return s[:i]
		}
		n++
	}
	return s
}

var reEventID = regexp.MustCompile(`^\d+`)

// EventID returns leading run of decimal digits of the file name.
func EventID(name string) (string, error) {
	id := reEventID.FindString(name)
	if id == "" {
		return "", fmt.Errorf("file name %q does not start with event id", name)
	}
	return id, nil
}
