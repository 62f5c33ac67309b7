package nlu

import (
	"regexp"
	"strconv"
	"strings"
)

// spokenNumbers maps Portuguese cardinal/ordinal number words (with their
// grammatical-gender variants) to selection indices. Order matters: entries
// are checked in sequence against the answer's tokens, first hit wins.
// Whole-token matching: "um" must not fire inside "numero".
var spokenNumbers = []struct {
	word  string
	value int
}{
	{"um", 1}, {"uma", 1}, {"primeiro", 1}, {"primeira", 1},
	{"dois", 2}, {"duas", 2}, {"segundo", 2}, {"segunda", 2},
	{"tres", 3}, {"terceiro", 3}, {"terceira", 3},
	{"quatro", 4}, {"quarta", 4}, {"quarto", 4},
	{"cinco", 5}, {"quinta", 5}, {"quinto", 5},
	{"seis", 6}, {"sexta", 6}, {"sexto", 6},
	{"sete", 7}, {"setima", 7}, {"setimo", 7},
	{"oito", 8}, {"oitava", 8}, {"oitavo", 8},
	{"nove", 9}, {"nona", 9}, {"nono", 9},
	{"dez", 10}, {"decima", 10}, {"decimo", 10},
}

var digitRunRe = regexp.MustCompile(`\d+`)

// ParseSelection interprets a disambiguation answer as a 1-based index.
// Spoken number words are tried first, then the first contiguous digit run.
// Returns false when the text carries no recognizable number; range checking
// against the pending list is the caller's job.
func ParseSelection(text string) (int, bool) {
	n := Normalize(text)
	if n == "" {
		return 0, false
	}
	tokens := strings.Fields(n)
	for _, e := range spokenNumbers {
		for _, tok := range tokens {
			if tok == e.word {
				return e.value, true
			}
		}
	}
	if run := digitRunRe.FindString(n); run != "" {
		v, err := strconv.Atoi(run)
		if err != nil || v == 0 {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
