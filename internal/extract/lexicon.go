package extract

import "strings"

// Marker lexicons are sentence-scoped. Hedged beats implied beats explicit
// so a claim is never scored stronger than its weakest qualifier. A plain
// declarative sentence with no marker at all counts as explicit: stating a
// fact without qualification is a commitment, not a hedge.

var hedgedMarkers = []string{
	"possibly",
	"might",
	"may be",
	"could be",
	"perhaps",
	"unclear whether",
	"unclear if",
	"not sure",
	"uncertain",
	"cannot rule out",
	"hard to say",
	"speculat",
}

var impliedMarkers = []string{
	"likely",
	"probably",
	"appears to",
	"appear to",
	"seems to",
	"seem to",
	"suggest",
	"points to",
	"consistent with",
	"presumably",
	"suspect",
}

// negationMarkers dismiss a claim outright: a sentence pairing one of these
// with a paraphrase produces no finding at all.
var negationMarkers = []string{
	"ruled out",
	"rule out",
	"ruling out",
	"not the cause",
	"not the root cause",
	"is not responsible",
	"was not responsible",
	"unrelated",
	"not related",
	"no evidence",
	"eliminated",
	"dismissed",
	"rather than",
	"red herring",
	"not involved",
	"exonerat",
	"cleared",
}

// causalMarkers flag a sentence as asserting causation, which is what turns
// a penalty-node mention from a dismissal into a wrong root-cause claim.
var causalMarkers = []string{
	"root cause",
	"caused",
	"causing",
	"cause of",
	"because of",
	"due to",
	"led to",
	"leads to",
	"resulted in",
	"results in",
	"triggered",
	"culprit",
	"to blame",
	"responsible for",
	"behind the",
	"the reason",
}

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// classifyConfidence returns the weakest qualifier present in the sentence.
func classifyConfidence(sentence string) Confidence {
	lower := strings.ToLower(sentence)
	if containsAny(lower, hedgedMarkers) {
		return Hedged
	}
	if containsAny(lower, impliedMarkers) {
		return Implied
	}
	return Explicit
}

// negated reports whether the sentence dismisses the matched paraphrase.
// "might not" style soft negation also suppresses: a finding the report
// itself doubts out of existence is not a claim.
func negated(sentence, paraphrase string) bool {
	lower := strings.ToLower(sentence)
	if !containsAny(lower, negationMarkers) {
		return false
	}
	// "X rather than Y": only the dismissed side is negated. When the
	// paraphrase sits after "rather than" it is the dismissed one.
	if idx := strings.Index(lower, "rather than"); idx >= 0 {
		p := strings.ToLower(paraphrase)
		pIdx := strings.Index(lower, p)
		if pIdx >= 0 && pIdx < idx {
			// Mentioned before "rather than": the affirmed side.
			// Still negated if another marker applies.
			trimmed := lower[:idx] + lower[idx+len("rather than"):]
			return containsAny(trimmed, negationMarkers)
		}
	}
	return true
}

// assertsCausal reports whether the sentence frames its claim as causation.
func assertsCausal(sentence string) bool {
	return containsAny(strings.ToLower(sentence), causalMarkers)
}
