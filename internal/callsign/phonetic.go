package callsign

import "strings"

// phoneticTable maps ITU phonetic-alphabet words (and accepted variants) to
// the letter or digit they spell, lower-cased for lookup.
var phoneticTable = map[string]string{
	"alpha": "A", "alfa": "A",
	"bravo": "B",
	"charlie": "C",
	"delta": "D",
	"echo": "E",
	"foxtrot": "F", "fox": "F",
	"golf": "G",
	"hotel": "H",
	"india": "I",
	"juliet": "J", "juliett": "J",
	"kilo": "K",
	"lima": "L",
	"mike": "M",
	"november": "N",
	"oscar": "O",
	"papa": "P",
	"quebec": "Q",
	"romeo": "R",
	"sierra": "S",
	"tango": "T",
	"uniform": "U",
	"victor": "V",
	"whiskey": "W", "whisky": "W",
	"xray": "X", "x-ray": "X",
	"yankee": "Y",
	"zulu": "Z",

	"zero": "0",
	"one":  "1",
	"two":  "2",
	"three": "3",
	"four": "4",
	"five": "5",
	"six":  "6",
	"seven": "7",
	"eight": "8",
	"nine": "9",

	// Non-standard digit words used to disambiguate over noisy voice links.
	"oh":    "0",
	"wun":   "1",
	"tree":  "3",
	"fower": "4",
	"fife":  "5",
	"ait":   "8",
	"niner": "9",
}

// separators are the token boundaries for the phonetic rewrite, in addition
// to whitespace.
const separatorChars = ",.-/\\"

func isSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || strings.ContainsRune(separatorChars, r)
}

// phoneticRewrite tokenizes transcript on whitespace and the separators
// `, . - / \`, consulting the ITU phonetic table for each token. A matching
// token emits its letter/digit into an accumulator; a bare single letter or
// digit passes through upper-cased; any other token (including a multi-digit
// numeral such as "44") flushes the accumulator as a whitespace-separated
// word, resetting it, and is written out as its own word. Any remaining
// accumulator is flushed at the end.
func phoneticRewrite(transcript string) string {
	var out strings.Builder
	var acc strings.Builder

	flush := func() {
		if acc.Len() == 0 {
			return
		}
		if out.Len() > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(acc.String())
		acc.Reset()
	}

	tokens := strings.FieldsFunc(transcript, isSeparator)
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if letter, ok := phoneticTable[lower]; ok {
			acc.WriteString(letter)
			continue
		}
		if isBareLetterOrDigit(tok) {
			acc.WriteString(strings.ToUpper(tok))
			continue
		}
		flush()
		if out.Len() > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(tok)
	}
	flush()

	return out.String()
}

// isBareLetterOrDigit reports whether tok is a single letter or a single
// 0-9 decimal digit (the conservative behavior: "44" is an opaque word, not
// two digits — see the phonetic decoder's documented ambiguity).
func isBareLetterOrDigit(tok string) bool {
	if len(tok) != 1 {
		return false
	}
	return isLetter(tok[0]) || (tok[0] >= '0' && tok[0] <= '9')
}
