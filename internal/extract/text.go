package extract

import "strings"

// document caches the lowered report plus token and sentence offsets so
// per-node matching does not retokenize.
type document struct {
	text  string
	lower string
	toks  []token
	sents []span
}

type token struct {
	text       string // lowered
	start, end int
}

type span struct{ start, end int }

func newDocument(text string) *document {
	d := &document{text: text, lower: strings.ToLower(text)}
	d.tokenize()
	d.splitSentences()
	return d
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}

func (d *document) tokenize() {
	i := 0
	for i < len(d.lower) {
		if !isWordByte(d.lower[i]) {
			i++
			continue
		}
		j := i
		for j < len(d.lower) && isWordByte(d.lower[j]) {
			j++
		}
		d.toks = append(d.toks, token{text: d.lower[i:j], start: i, end: j})
		i = j
	}
}

func (d *document) splitSentences() {
	start := 0
	for i := 0; i < len(d.text); i++ {
		switch d.text[i] {
		case '.', '!', '?', '\n':
			if i > start {
				d.sents = append(d.sents, span{start, i + 1})
			}
			start = i + 1
		}
	}
	if start < len(d.text) {
		d.sents = append(d.sents, span{start, len(d.text)})
	}
}

// sentenceAt returns the sentence containing byte offset pos, or the whole
// text when sentence splitting found nothing.
func (d *document) sentenceAt(pos int) string {
	for _, s := range d.sents {
		if pos >= s.start && pos < s.end {
			return d.text[s.start:s.end]
		}
	}
	return d.text
}

// bestWindow slides a window of len(needle tokens) tokens across the
// document and returns the highest-similarity window at or above min for
// which accept(start) holds. Leftmost window wins ties so extraction stays
// deterministic.
func (d *document) bestWindow(needle string, min float64, accept func(start int) bool) (start, end int, sim float64) {
	nToks := strings.Fields(needle)
	k := len(nToks)
	if k == 0 || len(d.toks) < k {
		return 0, 0, 0
	}
	target := strings.Join(nToks, " ")

	bestSim := 0.0
	bestStart, bestEnd := 0, 0
	for i := 0; i+k <= len(d.toks); i++ {
		parts := make([]string, k)
		for j := 0; j < k; j++ {
			parts[j] = d.toks[i+j].text
		}
		s := similarity(target, strings.Join(parts, " "))
		if s <= bestSim || s < min {
			continue
		}
		if accept != nil && !accept(d.toks[i].start) {
			continue
		}
		bestSim = s
		bestStart = d.toks[i].start
		bestEnd = d.toks[i+k-1].end
	}
	if bestSim < min {
		return 0, 0, bestSim
	}
	return bestStart, bestEnd, bestSim
}
