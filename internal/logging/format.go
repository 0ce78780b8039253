package logging

import (
	"encoding/json"
	"fmt"
	"strings"
)

// formatLine converts one zerolog JSON event into sift's log line. Fields
// absent from the event (module/thread, on lines logged before either tag
// was attached) render as "-".
func formatLine(raw []byte) string {
	var event map[string]any
	if err := json.Unmarshal(raw, &event); err != nil {
		return string(raw)
	}

	ts, _ := event["time"].(string)
	level, _ := event["level"].(string)
	module := fieldOrDash(event, "module")
	thread := fieldOrDash(event, "thread")
	message, _ := event["message"].(string)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s : %s : %s : %s : %s\n", ts, strings.ToUpper(level), module, thread, message)
	return sb.String()
}

func fieldOrDash(event map[string]any, key string) string {
	v, ok := event[key]
	if !ok {
		return "-"
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%d", int64(t))
	default:
		return fmt.Sprintf("%v", t)
	}
}
