package repair

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawItem is one loosely-typed item as the model emitted it. Field types
// are tolerant so that a sloppy value (amount as a bare number, a string
// where an array belongs) degrades to a usable zero value instead of
// failing the whole response.
type RawItem struct {
	Title         FlexString `json:"title"`
	Region        FlexString `json:"region"`
	Entity        FlexString `json:"entity"`
	Amount        FlexString `json:"amount"`
	Summary       FlexString `json:"summary"`
	SourceIndices IndexList  `json:"source_indices"`
}

// FlexString decodes a JSON string as-is, renders numbers and booleans as
// their literal text, and maps null or structured values to "".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case '{', '[':
		*f = ""
	default:
		// number, true, false: keep the literal text
		*f = FlexString(data)
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// IndexList decodes a JSON array of citation indices. A non-array value
// decodes to an empty list, and non-integer elements are skipped.
type IndexList []int

func (l *IndexList) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || data[0] != '[' {
		*l = nil
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		*l = nil
		return nil
	}
	out := make(IndexList, 0, len(elems))
	for _, e := range elems {
		var num json.Number
		if err := json.Unmarshal(e, &num); err != nil {
			continue
		}
		n, err := strconv.Atoi(num.String())
		if err != nil {
			fl, ferr := num.Float64()
			if ferr != nil {
				continue
			}
			n = int(fl)
		}
		out = append(out, n)
	}
	*l = out
	return nil
}
