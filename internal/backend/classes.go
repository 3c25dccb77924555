package backend

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jonathan/career-network/internal/types"
)

var (
	fenceOpen  = regexp.MustCompile("^```json\\n?")
	fenceClose = regexp.MustCompile("\\n?```$")
)

// StripJSONFence removes a leading ```json fence and its closing fence.
// Text not starting with the fence is returned unchanged.
func StripJSONFence(s string) string {
	if !strings.HasPrefix(s, "```json") {
		return s
	}
	s = fenceOpen.ReplaceAllString(s, "")
	return fenceClose.ReplaceAllString(s, "")
}

// NormalizeClasses reduces the loosely shaped lookup reply to a list of
// classes. Accepted shapes, in order: a top-level array, an object with
// "recommended_classes", an object with "classes", or an object whose first
// key holds an array. Anything else yields an empty list.
func NormalizeClasses(body []byte) ([]types.ClassRecommendation, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []types.ClassRecommendation{}, nil
	}

	if body[0] == '[' {
		return decodeClasses(body)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}

	for _, key := range []string{"recommended_classes", "classes"} {
		if raw, ok := obj[key]; ok && isArray(raw) {
			return decodeClasses(raw)
		}
	}

	key, err := firstKey(body)
	if err != nil {
		return nil, err
	}
	if raw, ok := obj[key]; ok && isArray(raw) {
		return decodeClasses(raw)
	}
	return []types.ClassRecommendation{}, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// decodeClasses accepts objects with camelCase, snake_case or "name" keys,
// and bare strings as class names.
func decodeClasses(raw []byte) ([]types.ClassRecommendation, error) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	out := make([]types.ClassRecommendation, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, types.ClassRecommendation{ClassName: v})
		case map[string]any:
			out = append(out, types.ClassRecommendation{
				ClassName:   firstString(v, "className", "class_name", "name", "title"),
				Description: firstString(v, "description", "reason"),
			})
		}
	}
	return out, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstKey returns the first key of a JSON object in document order.
func firstKey(body []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return "", err
	}
	if !dec.More() {
		return "", nil
	}
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, _ := tok.(string)
	return key, nil
}
