package memol

import (
	"sort"
	"strings"
)

// tensions holds the optional semitone offset (relative to the root) of
// each scale degree while a chord symbol is being parsed. A nil entry means
// the degree is absent from the chord. n07Candidate holds the offset a bare
// "7" extension resolves to: a dominant seventh (10) by default, a major
// seventh (11) once "maj"/"M"/"^" has been seen, and a diminished seventh
// (9) after "dim"/"0".
type tensions struct {
	n02, n03, n04, n05, n06 *int
	n07Candidate            int
	n07                     *int
	n09f, n09n, n09s        *int
	n11, n13                *int
}

func newTensions() tensions {
	three, five := 4, 7
	return tensions{n03: &three, n05: &five, n07Candidate: 10}
}

func intp(n int) *int { return &n }

// notesRev appends, in descending-degree order, the absolute pitch (root +
// offset) of every tension present in t.
func (t tensions) notesRev(dst []int, root int) []int {
	degrees := []*int{t.n13, t.n11, t.n09s, t.n09n, t.n09f, t.n07, t.n06, t.n05, t.n04, t.n03, t.n02}
	for _, n := range degrees {
		if n != nil {
			dst = append(dst, root+*n)
		}
	}
	return dst
}

// chordStream is a cursor over chord-symbol text; positions are byte
// offsets, matching Go's native string indexing.
type chordStream struct {
	text string
	pos  int
}

// skipWS advances past whitespace and the punctuation that separates
// polychord and bass-note clauses (',' and ')').
func (s *chordStream) skipWS() {
	for i, c := range s.text[s.pos:] {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' && c != ',' && c != ')' {
			s.pos += i
			return
		}
	}
	s.pos = len(s.text)
}

// getToken consumes tok if it appears next (after skipping separators) and
// reports whether it matched.
func (s *chordStream) getToken(tok string) bool {
	s.skipWS()
	if strings.HasPrefix(s.text[s.pos:], tok) {
		s.pos += len(tok)
		return true
	}
	return false
}

func parseChordNote(s *chordStream) (int, bool) {
	var note int
	switch {
	case s.getToken("C"):
		note = 0
	case s.getToken("D"):
		note = 2
	case s.getToken("E"):
		note = 4
	case s.getToken("F"):
		note = 5
	case s.getToken("G"):
		note = 7
	case s.getToken("A"):
		note = 9
	case s.getToken("B"):
		note = 11
	default:
		return 0, false
	}

	// "C+" == "Caug" != "C#", "C-" == "Cdim" != "Cb".
	sign := 0
	switch {
	case s.getToken("b"):
		sign = -1
	case s.getToken("#"):
		sign = 1
	}
	return note + sign, true
}

func parseChordTension(s *chordStream) (note, sign int, ok bool) {
	pos := s.pos

	switch {
	case s.getToken("-"), s.getToken("b"):
		sign = -1
	case s.getToken("+"), s.getToken("#"):
		sign = 1
	}

	switch {
	case s.getToken("13"):
		note = 13
	case s.getToken("11"):
		note = 11
	case s.getToken("9"):
		note = 9
	case s.getToken("7"):
		note = 7
	case s.getToken("6"):
		note = 6
	case s.getToken("5"):
		note = 5
	case s.getToken("4"):
		note = 4
	case s.getToken("3"):
		note = 3
	case s.getToken("2"):
		note = 2
	default:
		s.pos = pos
		return 0, 0, false
	}
	return note, sign, true
}

// parseChordSymbol consumes one quality token ("maj", "m", "dim", "sus4",
// "add9", ...) and mutates t accordingly. It reports false (restoring the
// cursor) when nothing recognizable is next.
func parseChordSymbol(s *chordStream, t *tensions) bool {
	pos := s.pos
	switch {
	case s.getToken("maj"), s.getToken("Maj"), s.getToken("M"), s.getToken("^"):
		t.n07Candidate = 11
	case s.getToken("m"):
		t.n03 = intp(3)
	case s.getToken("dim"), s.getToken("0"):
		t.n03 = intp(3)
		t.n05 = intp(6)
		t.n07Candidate = 9
	case s.getToken("aug"):
		t.n05 = intp(8)
	case s.getToken("h"):
		t.n03 = intp(3)
		t.n05 = intp(6)
	case s.getToken("sus2"):
		t.n03 = nil
		t.n02 = intp(2)
	case s.getToken("sus4"), s.getToken("sus"):
		t.n03 = nil
		t.n04 = intp(5)
	case s.getToken("add"):
		note, sign, ok := parseChordTension(s)
		if !ok {
			s.pos = pos
			return false
		}
		addTensionExplicit(t, note, sign)
	case s.getToken("omit"), s.getToken("no"):
		note, sign, ok := parseChordTension(s)
		if !ok {
			s.pos = pos
			return false
		}
		omitTensionExplicit(t, note, sign)
	default:
		return false
	}
	return true
}

func omitTensionExplicit(t *tensions, note, sign int) {
	switch note {
	case 13:
		t.n13 = nil
	case 11:
		t.n11 = nil
	case 9:
		switch sign {
		case -1:
			t.n09f = nil
		case 0:
			t.n09f, t.n09n, t.n09s = nil, nil, nil
		case 1:
			t.n09s = nil
		}
	case 7:
		t.n07 = nil
	case 6:
		t.n06 = nil
	case 5:
		t.n05 = nil
	case 4:
		t.n04 = nil
	case 3:
		t.n03 = nil
	case 2:
		t.n02 = nil
	}
}

func omitTensionImplicit(t *tensions, note, sign int) {
	switch {
	case note == 13:
		t.n05 = nil
	case note == 11 && sign <= 0:
		t.n03 = nil
	case note == 11 && sign == 1:
		t.n05 = nil
	case note == 5 && sign == 0:
		t.n03 = nil
	case note == 4:
		t.n03 = nil
	case note == 3:
		t.n05 = nil
	case note == 2:
		t.n03 = nil
	}
}

func addTensionExplicit(t *tensions, note, sign int) {
	switch note {
	case 13:
		t.n13 = intp(9 + sign)
	case 11:
		t.n11 = intp(5 + sign)
	case 9:
		t.n09n = nil
		switch sign {
		case -1:
			t.n09f = intp(1)
		case 0:
			t.n09n = intp(2)
		case 1:
			t.n09s = intp(3)
		}
	case 7:
		t.n07 = intp(t.n07Candidate + sign)
	case 6:
		t.n06 = intp(9 + sign)
	case 5:
		t.n05 = intp(7 + sign)
	case 4:
		t.n04 = intp(5 + sign)
	case 3:
		t.n03 = intp(4 + sign)
	case 2:
		t.n02 = intp(2 + sign)
	}
}

func addTensionImplicit(t *tensions, note int) {
	switch note {
	case 13:
		t.n07 = intp(t.n07Candidate)
		t.n09n = intp(2)
		t.n11 = intp(5)
	case 11:
		t.n07 = intp(t.n07Candidate)
		t.n09n = intp(2)
	case 9:
		t.n07 = intp(t.n07Candidate)
	}
}

// parseChordElements parses everything following the root note: quality
// tokens, numeric tensions, and parenthesized tension groups.
//
// ToDo: alt, dim5, aug5.
func parseChordElements(s *chordStream) tensions {
	t := newTensions()

	// "C-9" == "Cm9" != "C(-9)", "C+9" == "Caug9" != "C(+9)".
	switch {
	case s.getToken("-"):
		t.n03 = intp(3)
	case s.getToken("+"):
		t.n05 = intp(8)
	}

	isFirst := true
	for {
		if parseChordSymbol(s, &t) {
			continue
		}
		if note, sign, ok := parseChordTension(s); ok {
			addTensionExplicit(&t, note, sign)
			omitTensionImplicit(&t, note, sign)
			if isFirst {
				isFirst = false
				addTensionImplicit(&t, note)
			}
			continue
		}
		if s.getToken("(") {
			isFirst = false
			continue
		}
		break
	}
	return t
}

// ParseChord parses a chord symbol from the start of text and returns the
// number of bytes consumed and the chord's notes as semitone offsets from C
// (root plus interval, not reduced to an octave or voiced). The notes are
// ordered from the bottom up by degree: the slash bass (with its own
// tensions, for a polychord) first, then the root, then the chord's degrees
// in ascending degree order. A tension such as 9 is stored as 2 semitones
// above the root, so the result is not necessarily sorted numerically.
// It never errors: an unparseable root yields no notes, and the consumed
// count then covers only the leading separators (whitespace, ',' and ')').
func ParseChord(text string) (consumed int, notes []int) {
	s := &chordStream{text: text}

	root, ok := parseChordNote(s)
	if !ok {
		return s.pos, nil
	}
	t := parseChordElements(s)
	notes = t.notesRev(notes, root)
	notes = append(notes, root)

	for {
		pos := s.pos
		if !s.getToken("on") && !s.getToken("/") {
			break
		}
		bassRoot, ok := parseChordNote(s)
		if !ok {
			s.pos = pos
			break
		}
		before := s.pos
		bt := parseChordElements(s)
		if s.pos > before {
			// polychord: the slash root carries its own tensions.
			notes = bt.notesRev(notes, bassRoot)
		}
		notes = append(notes, bassRoot)
	}

	// reverse to ascending order.
	for i, j := 0, len(notes)-1; i < j; i, j = i+1, j-1 {
		notes[i], notes[j] = notes[j], notes[i]
	}
	return s.pos, notes
}

// sortedCopy is a small helper used by tests to compare chord output as a
// numerically sorted set, regardless of ParseChord's degree ordering.
func sortedCopy(xs []int) []int {
	dst := append([]int(nil), xs...)
	sort.Ints(dst)
	return dst
}
