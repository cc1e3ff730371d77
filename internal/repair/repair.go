// Package repair turns the raw text of a generative-search response, which
// is supposed to be JSON but may not be, into a parsed item list. It never
// fails: irrecoverable input degrades to an empty item list so the ingestion
// pipeline keeps working when the upstream model misbehaves.
package repair

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Outcome is the result of a repair attempt. Exactly one of two states:
// the input parsed (possibly after cleanup) and Items holds its records, or
// the input was irrecoverable and Fallback is set with Items empty.
type Outcome struct {
	Items    []RawItem
	Fallback bool
}

// Repairer cleans and parses raw model output.
type Repairer struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Repairer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repairer{log: log}
}

// missingIndicesRe matches a source_indices key whose value the model
// omitted entirely, leaving the key followed by a closing delimiter. The
// patch is keyed to this one field rather than generalized, so it cannot
// touch colons inside string values.
var missingIndicesRe = regexp.MustCompile(`("source_indices"\s*:)\s*([,}\]])`)

// Repair cleans rawText and parses it. Accepted shapes are an object with
// an "items" array or a bare array of item objects; anything else parses to
// an empty item list. A failed parse is logged and mapped to the fallback
// outcome rather than returned as an error.
func (r *Repairer) Repair(rawText string) Outcome {
	cleaned := missingIndicesRe.ReplaceAllString(stripCodeFence(rawText), "$1 []$2")

	items, ok := parseItems(cleaned)
	if !ok {
		r.log.Warn("response unparseable, substituting empty item list",
			zap.Int("raw_len", len(rawText)))
		return Outcome{Items: []RawItem{}, Fallback: true}
	}
	if items == nil {
		items = []RawItem{}
	}
	return Outcome{Items: items}
}

func parseItems(s string) ([]RawItem, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var items []RawItem
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			return items, true
		}
	} else {
		var envelope struct {
			Items []RawItem `json:"items"`
		}
		if err := json.Unmarshal([]byte(s), &envelope); err == nil {
			return envelope.Items, true
		}
	}
	// Valid JSON of some other shape normalizes to an empty item list;
	// only unparseable text is a repair failure.
	var probe interface{}
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, false
	}
	return nil, true
}

// stripCodeFence unwraps a leading/trailing Markdown code fence, with or
// without a language tag. Unfenced input passes through untouched.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF"))
	if !strings.HasPrefix(s, "```") {
		return s
	}
	rest := s[3:]
	nl := strings.IndexByte(rest, '\n')
	if nl == -1 {
		return s
	}
	rest = rest[nl+1:]
	if end := strings.LastIndex(rest, "```"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
