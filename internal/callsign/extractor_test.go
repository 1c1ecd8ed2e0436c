package callsign

import "testing"

func TestExtractPhoneticCallsign(t *testing.T) {
	transcript := "CQ CQ CQ this is Fox Four Juliet Zulu Whiskey portable"
	got := Extract(transcript)

	if len(got) != 1 {
		t.Fatalf("got %d results, want 1: %+v", len(got), got)
	}
	want := Extracted{Text: "F4JZW", Confidence: phoneticConfidence, Method: Phonetic}
	if got[0] != want {
		t.Fatalf("got %+v, want %+v", got[0], want)
	}
}

func TestExtractDirectCallsignsBothStations(t *testing.T) {
	got := Extract("W1AW this is F4JZW")

	if len(got) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(got), got)
	}
	for _, e := range got {
		if e.Method != Direct || e.Confidence != directConfidence {
			t.Fatalf("expected all-Direct results, got %+v", e)
		}
	}
	if got[0].Text != "W1AW" || got[1].Text != "F4JZW" {
		t.Fatalf("unexpected text/order: %+v", got)
	}
}

func TestExtractNoMatchReturnsEmpty(t *testing.T) {
	got := Extract("HELLO WORLD")
	if len(got) != 0 {
		t.Fatalf("got %d results, want 0: %+v", len(got), got)
	}
}

func TestExtractDedupesDirectAndPhoneticHit(t *testing.T) {
	// The bare callsign already appears directly; the phonetic rewrite of the
	// surrounding chatter must not produce a duplicate lower-confidence entry.
	got := Extract("this is W1AW, W1AW standing by")

	if len(got) != 1 {
		t.Fatalf("got %d results, want 1 deduplicated: %+v", len(got), got)
	}
	if got[0].Text != "W1AW" || got[0].Method != Direct {
		t.Fatalf("unexpected result: %+v", got[0])
	}
}

func TestIsValidRejectsBannedSubstring(t *testing.T) {
	if IsValid("ROGER1A") {
		t.Fatal("banned substring must be rejected")
	}
}

func TestIsValidRejectsMissingDigit(t *testing.T) {
	if IsValid("ABCDEF") {
		t.Fatal("callsign without a digit must be rejected")
	}
}

func TestIsValidRejectsOutOfRangeLength(t *testing.T) {
	if IsValid("A1B") {
		t.Fatal("3-character candidate must be rejected")
	}
	if IsValid("ABCD1EFG") {
		t.Fatal("8-character candidate must be rejected")
	}
}

func TestPhoneticRewriteAccumulatesAndFlushes(t *testing.T) {
	got := phoneticRewrite("Fox Four Juliet Zulu Whiskey portable")
	want := "F4JZW portable"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPhoneticRewritePassesBareDigitsAndLetters(t *testing.T) {
	got := phoneticRewrite("W one Alpha Whiskey")
	want := "W1AW"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPhoneticRewriteNonMatchingWordFlushesAccumulator(t *testing.T) {
	got := phoneticRewrite("Fox Four hello Juliet Zulu Whiskey")
	want := "F4 hello JZW"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
