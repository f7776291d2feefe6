package logging

import (
	"log/slog"
	"strings"
)

type infoField struct {
	label string
	value string
}

// infoHighlightKeys are printed first, in this order, when present.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	"error",
	FieldErrorHint,
	FieldImpact,
	"title",
	"artist",
	"album",
	"format",
	"output",
	"lyrics_lines",
	"cover_bytes",
	"status",
	"reason",
}

// selectInfoFields orders attrs for console display and returns the count of
// debug-only fields withheld at info level and above.
func selectInfoFields(attrs []kv, includeDebug bool) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, len(attrs))
	hidden := 0

	take := func(idx int) {
		used[idx] = true
		attr := attrs[idx]
		if !includeDebug && isDebugOnlyKey(attr.key) {
			hidden++
			return
		}
		value := formatValueForKey(attr.key, attr.value)
		if !includeDebug && attr.key != "error" && len(value) > 160 {
			hidden++
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: value})
	}

	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				take(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			take(idx)
		}
	}
	return result, hidden
}

func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	switch {
	case isByteSizeKey(key) && v.Kind() == slog.KindInt64:
		return formatBytes(v.Int64())
	case v.Kind() == slog.KindDuration:
		return formatDurationHuman(v.Duration())
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	}
	value := formatValue(v)
	if key == "error" && len(value) > 200 {
		value = value[:200] + "…"
	}
	return value
}

func isByteSizeKey(key string) bool {
	return strings.HasSuffix(key, "_bytes") || key == "size"
}

func isDebugOnlyKey(key string) bool {
	if key == FieldCorrelationID {
		return true
	}
	if strings.HasSuffix(key, "_id") || strings.HasSuffix(key, "_url") {
		return true
	}
	return strings.Contains(key, "_path") || strings.Contains(key, "_dir")
}

func displayLabel(key string) string {
	switch key {
	case FieldAlert:
		return "Alert"
	case FieldEventType:
		return "Event"
	case FieldErrorHint:
		return "Hint"
	case "lyrics_lines":
		return "Lyrics"
	case "cover_bytes":
		return "Cover"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}
