package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ParamType represents the type of a parameter for styling
type ParamType int

const (
	ParamTypePath ParamType = iota
	ParamTypeCommand
	ParamTypeURL
	ParamTypeQuery
	ParamTypeNumber
	ParamTypeBoolean
	ParamTypeArray
	ParamTypeObject
	ParamTypeString
)

// Color constants for parameter types
const (
	ColorParamPath    = "#6B8EEF" // Blue
	ColorParamCommand = "#50C878" // Green
	ColorParamURL     = "#00CED1" // Cyan
	ColorParamQuery   = "#FFD700" // Gold
	ColorParamNumber  = "#FFA500" // Orange
	ColorParamBoolean = "#FF6B9D" // Pink
	ColorParamArray   = "#87CEEB" // Sky Blue
	ColorParamObject  = "#DDA0DD" // Plum
	ColorParamString  = "#C0C0C0" // Silver
	ColorParamKey     = "#808080" // Gray
)

// ParamsRenderer is the generic fallback rendering for tool inputs the
// registry has no dedicated renderer for: styled key/value pairs over
// the raw payload.
type ParamsRenderer struct {
	keyStyle  lipgloss.Style
	typeStyle lipgloss.Style
}

// NewParamsRenderer creates a new parameter renderer
func NewParamsRenderer() *ParamsRenderer {
	return &ParamsRenderer{
		keyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorParamKey)).
			Bold(true),
		typeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true),
	}
}

// FormatCompactParams formats parameters as key-value lines, sorted by
// key for stable output.
func (pr *ParamsRenderer) FormatCompactParams(params map[string]interface{}) string {
	if len(params) == 0 {
		return pr.typeStyle.Render("No parameters")
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		value := params[key]
		paramType := detectParamType(key, value)
		valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(paramColor(paramType)))

		lines = append(lines, fmt.Sprintf("  %s %s",
			pr.keyStyle.Render(key+":"),
			valueStyle.Render(formatParamValue(value, 60))))
	}

	return strings.Join(lines, "\n")
}

// detectParamType determines the type of a parameter from its key name
// and value.
func detectParamType(key string, value interface{}) ParamType {
	keyLower := strings.ToLower(key)

	switch {
	case strings.Contains(keyLower, "path") || strings.Contains(keyLower, "file") || strings.Contains(keyLower, "dir"):
		return ParamTypePath
	case strings.Contains(keyLower, "command") || strings.Contains(keyLower, "cmd"):
		return ParamTypeCommand
	case strings.Contains(keyLower, "url"):
		return ParamTypeURL
	case strings.Contains(keyLower, "query") || strings.Contains(keyLower, "search"):
		return ParamTypeQuery
	}

	switch v := value.(type) {
	case bool:
		return ParamTypeBoolean
	case float64:
		return ParamTypeNumber
	case []interface{}:
		return ParamTypeArray
	case map[string]interface{}:
		return ParamTypeObject
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return ParamTypeURL
		}
		if strings.HasPrefix(v, "/") || strings.HasPrefix(v, "./") || strings.HasPrefix(v, "../") {
			return ParamTypePath
		}
	}

	return ParamTypeString
}

func paramColor(pt ParamType) string {
	switch pt {
	case ParamTypePath:
		return ColorParamPath
	case ParamTypeCommand:
		return ColorParamCommand
	case ParamTypeURL:
		return ColorParamURL
	case ParamTypeQuery:
		return ColorParamQuery
	case ParamTypeNumber:
		return ColorParamNumber
	case ParamTypeBoolean:
		return ColorParamBoolean
	case ParamTypeArray:
		return ColorParamArray
	case ParamTypeObject:
		return ColorParamObject
	default:
		return ColorParamString
	}
}

// formatParamValue formats a parameter value for display
func formatParamValue(value interface{}, maxLen int) string {
	var str string

	switch v := value.(type) {
	case bool:
		if v {
			str = "true"
		} else {
			str = "false"
		}
	case float64:
		if v == float64(int64(v)) {
			str = fmt.Sprintf("%d", int64(v))
		} else {
			str = fmt.Sprintf("%.2f", v)
		}
	case string:
		str = v
	case []interface{}:
		str = fmt.Sprintf("[%d items]", len(v))
	case map[string]interface{}:
		str = fmt.Sprintf("{%d keys}", len(v))
	case nil:
		str = "null"
	default:
		if bytes, err := json.Marshal(v); err == nil {
			str = string(bytes)
		} else {
			str = fmt.Sprintf("%v", v)
		}
	}

	if len(str) > maxLen {
		return str[:maxLen-3] + "..."
	}
	return str
}
