package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy names the step of a fallback chain that produced a result
type Strategy string

const (
	StrategyNone       Strategy = ""
	StrategyDirect     Strategy = "direct"
	StrategyBounded    Strategy = "bounded"
	StrategyRepaired   Strategy = "repaired"
	StrategyAnchored   Strategy = "anchored"
	StrategyBlock      Strategy = "block"
	StrategyLines      Strategy = "lines"
	StrategyParagraphs Strategy = "paragraphs"
	StrategySections   Strategy = "sections"
)

// Result is a JSON object recovered from a completion
type Result struct {
	Data     map[string]any
	Strategy Strategy
}

// bare word followed by a colon. Naive: it also matches inside string values
// such as "10:30" or "https://".
var bareKeyPattern = regexp.MustCompile(`(\w+):`)

// JSON recovers a JSON object from a completion.
// 1. Parse the whole text
// 2. Parse the slice between the first '{' and the last '}'
// 3. Parse the same slice after replacing single quotes with double quotes
// and quoting bare keys
//
// It returns false when every step fails. The slice uses the first and last
// brace of the whole text, so prose after the object that contains braces
// defeats steps 2 and 3.
func JSON(text string) (*Result, bool) {
	if data, ok := parseObject(text); ok {
		return &Result{Data: data, Strategy: StrategyDirect}, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	candidate := strings.TrimSpace(text[start : end+1])
	if data, ok := parseObject(candidate); ok {
		return &Result{Data: data, Strategy: StrategyBounded}, true
	}

	if data, ok := parseObject(repairJSON(candidate)); ok {
		return &Result{Data: data, Strategy: StrategyRepaired}, true
	}

	return nil, false
}

func repairJSON(s string) string {
	s = strings.ReplaceAll(s, "'", `"`)
	return bareKeyPattern.ReplaceAllString(s, `"$1":`)
}

func parseObject(s string) (map[string]any, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil || data == nil {
		return nil, false
	}
	return data, true
}
