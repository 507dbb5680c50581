package recommend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/health-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
)

// Defaults applied to sparse AI output.
const (
	DefaultTitle       = "Health Recommendation"
	DefaultDescription = "No description provided"
)

// Parse extracts recommendations from free-form model output. Missing or
// invalid fields get defaults; only the absence of parseable JSON fails.
func Parse(raw string) ([]domain.Recommendation, error) {
	text := stripCodeFences(raw)

	var lastErr error
	var empty []domain.Recommendation
	for start := 0; start < len(text); {
		candidate, next, ok := nextJSONCandidate(text, start)
		if !ok {
			break
		}
		start = next

		items, err := decodeItems(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		recs := normalize(items)
		if len(recs) > 0 {
			return recs, nil
		}
		// valid JSON without any objects, e.g. "[1]" in prose; keep looking
		if empty == nil {
			empty = []domain.Recommendation{}
		}
	}

	if empty != nil {
		return empty, nil
	}
	if lastErr != nil {
		return nil, apperrors.NewParseError(lastErr, "AI response contains invalid JSON")
	}
	return nil, apperrors.NewParseError(nil, "no JSON found in AI response")
}

// stripCodeFences removes markdown ``` fences (with optional language tag).
func stripCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// nextJSONCandidate finds the first '[' or '{' at or after from and returns
// the balanced substring starting there. next is where the following search
// should resume if the candidate does not decode.
func nextJSONCandidate(s string, from int) (candidate string, next int, ok bool) {
	open := strings.IndexAny(s[from:], "[{")
	if open < 0 {
		return "", 0, false
	}
	open += from

	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return s[open : i+1], open + 1, true
			}
		}
	}
	// Unbalanced: hand the tail to the decoder so the error is reported.
	return s[open:], open + 1, true
}

// decodeItems accepts an array of objects, a single object, or an object
// wrapping the array under "recommendations".
func decodeItems(candidate string) ([]json.RawMessage, error) {
	candidate = strings.TrimSpace(candidate)
	if strings.HasPrefix(candidate, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &items); err != nil {
			return nil, fmt.Errorf("failed to decode array: %w", err)
		}
		return items, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	if wrapped, ok := obj["recommendations"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(wrapped, &items); err == nil {
			return items, nil
		}
	}
	return []json.RawMessage{json.RawMessage(candidate)}, nil
}

func normalize(items []json.RawMessage) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(items))
	used := make(map[string]bool, len(items))

	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			// not an object; nothing to default from
			continue
		}

		rec := domain.Recommendation{
			ID:          rawID(fields["id"]),
			Title:       rawString(fields["title"]),
			Description: rawString(fields["description"]),
			Icon:        rawString(fields["icon"]),
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("rec-%d", i)
		}
		rec.ID = uniqueID(rec.ID, used)
		if rec.Title == "" {
			rec.Title = DefaultTitle
		}
		if rec.Description == "" {
			rec.Description = DefaultDescription
		}
		if t, ok := domain.ParseRecommendationType(rawString(fields["type"])); ok {
			rec.Type = t
		} else {
			rec.Type = domain.TypeLifestyle
		}
		if p, ok := domain.ParsePriority(rawString(fields["priority"])); ok {
			rec.Priority = p
		} else {
			rec.Priority = domain.PriorityMedium
		}
		if rec.Icon == "" {
			rec.Icon = domain.DefaultIcon
		}
		out = append(out, rec)
	}
	return out
}

// uniqueID returns id, or id-N with the smallest N >= 2 not yet used, and
// marks the result as used.
func uniqueID(id string, used map[string]bool) string {
	candidate := id
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	used[candidate] = true
	return candidate
}

// rawString reads a JSON string field. Any other JSON type counts as missing.
func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}
