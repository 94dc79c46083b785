// Package sse parses the text/event-stream-shaped responses a homeserver's
// events-stream endpoint returns when polled, and extracts the pubky://
// pixel URIs they carry (spec §4.3).
package sse

import (
	"strings"
)

// Event is one parsed SSE block: an event type, the URI its data line
// carried (if any), and the cursor value to resume from (if any).
type Event struct {
	EventType string
	URI       string
	Cursor    string
}

// Parse splits text into SSE blocks separated by blank lines and extracts
// the event type, URI, and cursor from each. Unknown data lines are
// ignored. A trailing block with no terminating blank line is still
// emitted as long as it has both an event type and a URI. Empty input
// yields an empty slice.
func Parse(text string) []Event {
	var events []Event
	var currentType, currentURI, currentCursor string

	flush := func() {
		events = append(events, Event{EventType: currentType, URI: currentURI, Cursor: currentCursor})
		currentType, currentURI, currentCursor = "", "", ""
	}

	// The newline that ends the last line is not itself a blank line.
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "event: "):
			currentType = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			switch {
			case strings.HasPrefix(data, "cursor: "):
				currentCursor = strings.TrimPrefix(data, "cursor: ")
			case strings.HasPrefix(data, "content_hash:"):
				// ignored
			case strings.HasPrefix(data, "pubky://"):
				currentURI = data
			}
		case line == "" && currentType != "":
			flush()
		}
	}

	if currentType != "" && currentURI != "" {
		flush()
	}

	return events
}

// ParsePixelURI extracts the user public key and pixel event ID from a
// pubky://<user_pk>/pub/pubky-canva/pixels/<id> URI. Any other shape
// returns ok=false.
func ParsePixelURI(uri string) (userPK, pixelID string, ok bool) {
	const scheme = "pubky://"
	const pathPrefix = "pub/pubky-canva/pixels/"

	rest, found := strings.CutPrefix(uri, scheme)
	if !found {
		return "", "", false
	}

	pk, path, found := strings.Cut(rest, "/")
	if !found {
		return "", "", false
	}

	id, found := strings.CutPrefix(path, pathPrefix)
	if !found || id == "" {
		return "", "", false
	}

	return pk, id, true
}
