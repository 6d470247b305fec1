package codec

import (
	"encoding/json"
	"sort"
	"strings"
)

const tagSeparator = ", "

type tagsCodec struct{}

func (tagsCodec) Encode(tags []string) (any, error) {
	if len(tags) == 0 {
		return "", nil
	}
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.Strings(sorted)
	return strings.Join(sorted, tagSeparator), nil
}

func (tagsCodec) Decode(raw json.RawMessage) ([]string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, decodeError("tag list", raw, "expected a string")
	}
	if s == "" {
		return []string{}, nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts, nil
}

// Tags is the codec for a task's tag list. The server may reorder tags, so compare
// decoded lists with TagsEqual rather than element by element.
var Tags Codec[[]string] = tagsCodec{}

// TagsEqual reports whether a and b hold the same set of tags.
func TagsEqual(a, b []string) bool {
	as := tagSet(a)
	bs := tagSet(b)
	if len(as) != len(bs) {
		return false
	}
	for t := range as {
		if _, ok := bs[t]; !ok {
			return false
		}
	}
	return true
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
