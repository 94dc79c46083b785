package sse

import "testing"

func TestParseEmptyInput(t *testing.T) {
	events := Parse("")
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestParseSingleBlockWithTerminatingBlankLine(t *testing.T) {
	text := "event: PUT\n" +
		"data: pubky://pk1/pub/pubky-canva/pixels/01H8X\n" +
		"data: cursor: 42\n" +
		"data: content_hash: abcdef\n" +
		"\n"

	events := Parse(text)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != "PUT" {
		t.Errorf("event type = %q, want PUT", e.EventType)
	}
	if e.URI != "pubky://pk1/pub/pubky-canva/pixels/01H8X" {
		t.Errorf("uri = %q", e.URI)
	}
	if e.Cursor != "42" {
		t.Errorf("cursor = %q, want 42", e.Cursor)
	}
}

func TestParseTrailingBlockWithoutBlankLine(t *testing.T) {
	text := "event: PUT\ndata: pubky://pk1/pub/pubky-canva/pixels/01H8X\n"
	events := Parse(text)
	if len(events) != 1 {
		t.Fatalf("expected 1 event for trailing block, got %d", len(events))
	}
}

func TestParseTrailingBlockMissingURIIsDropped(t *testing.T) {
	text := "event: PUT\n"
	events := Parse(text)
	if len(events) != 0 {
		t.Fatalf("expected trailing block with no URI to be dropped, got %d events", len(events))
	}
}

func TestParseMultipleBlocks(t *testing.T) {
	text := "event: PUT\n" +
		"data: pubky://pk1/pub/pubky-canva/pixels/id1\n" +
		"data: cursor: 1\n" +
		"\n" +
		"event: PUT\n" +
		"data: pubky://pk2/pub/pubky-canva/pixels/id2\n" +
		"data: cursor: 2\n" +
		"\n"

	events := Parse(text)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Cursor != "1" || events[1].Cursor != "2" {
		t.Errorf("unexpected cursors: %+v", events)
	}
}

func TestParseIgnoresUnknownDataLines(t *testing.T) {
	text := "event: DELETE\ndata: some unrelated payload\n\n"
	events := Parse(text)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].URI != "" {
		t.Errorf("expected unknown data line to be ignored, got URI %q", events[0].URI)
	}
}

func TestParsePixelURIValid(t *testing.T) {
	pk, id, ok := ParsePixelURI("pubky://abc123/pub/pubky-canva/pixels/01H8XVWXYZ1AB")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if pk != "abc123" {
		t.Errorf("user_pk = %q, want abc123", pk)
	}
	if id != "01H8XVWXYZ1AB" {
		t.Errorf("pixel id = %q", id)
	}
}

func TestParsePixelURIWrongScheme(t *testing.T) {
	_, _, ok := ParsePixelURI("https://abc123/pub/pubky-canva/pixels/id")
	if ok {
		t.Fatal("expected ok=false for non-pubky scheme")
	}
}

func TestParsePixelURIWrongPath(t *testing.T) {
	_, _, ok := ParsePixelURI("pubky://abc123/pub/other-app/pixels/id")
	if ok {
		t.Fatal("expected ok=false for non-matching path")
	}
}

func TestParsePixelURIEmptyID(t *testing.T) {
	_, _, ok := ParsePixelURI("pubky://abc123/pub/pubky-canva/pixels/")
	if ok {
		t.Fatal("expected ok=false for empty pixel id")
	}
}

func TestParsePixelURINoSlashAfterKey(t *testing.T) {
	_, _, ok := ParsePixelURI("pubky://abc123")
	if ok {
		t.Fatal("expected ok=false when there is no path segment")
	}
}
