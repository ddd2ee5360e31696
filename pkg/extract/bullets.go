package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var ErrNoBullets = goerr.New("no valid bullet points found in response")

// BulletResult is the response body of the bullet endpoints
type BulletResult struct {
	Bullets  []string `json:"bullets"`
	Strategy Strategy `json:"-"`
}

var (
	anchoredBlockPattern = regexp.MustCompile(`(?s)\{.*?\}\s*$`)
	looseBlockPattern    = regexp.MustCompile(`(?s)\{.*\}`)
	blankLinePattern     = regexp.MustCompile(`\n[ \t]*\n`)
)

// Bullets turns a completion into a list of bullet lines. Steps are tried in
// order:
// 1. The whole text is a JSON object with "bullets" (returned as-is)
// 2. A brace block at the end of the text, then any brace block, holding
// "bullets" (items are normalized)
// 3. Lines starting with '-' or '•'
// 4. Blank-line separated paragraphs, when there are at least two
//
// ErrNoBullets is returned when nothing is recovered. An object with an empty
// "bullets" list is a successful result with no bullets.
func Bullets(text string) (*BulletResult, error) {
	if data, ok := parseObject(strings.TrimSpace(text)); ok {
		if items, ok := bulletItems(data); ok {
			return &BulletResult{Bullets: items, Strategy: StrategyDirect}, nil
		}
	}

	blocks := []struct {
		pattern  *regexp.Regexp
		strategy Strategy
	}{
		{anchoredBlockPattern, StrategyAnchored},
		{looseBlockPattern, StrategyBlock},
	}
	for _, b := range blocks {
		block := b.pattern.FindString(text)
		if block == "" {
			continue
		}
		data, ok := parseObject(block)
		if !ok {
			continue
		}
		items, ok := bulletItems(data)
		if !ok {
			continue
		}
		return &BulletResult{Bullets: normalizeBullets(items), Strategy: b.strategy}, nil
	}

	if bullets := scanBulletLines(text); len(bullets) > 0 {
		return &BulletResult{Bullets: bullets, Strategy: StrategyLines}, nil
	}

	if bullets := paragraphBullets(text); len(bullets) > 0 {
		return &BulletResult{Bullets: bullets, Strategy: StrategyParagraphs}, nil
	}

	return nil, goerr.Wrap(ErrNoBullets, "failed to extract bullets from completion",
		goerr.V("length", len(text)))
}

// bulletItems reads the "bullets" value. A single string counts as one item.
func bulletItems(data map[string]any) ([]string, bool) {
	v, ok := data["bullets"]
	if !ok {
		return nil, false
	}

	switch t := v.(type) {
	case nil:
		return []string{}, true
	case string:
		return []string{t}, true
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			switch s := item.(type) {
			case nil:
				continue
			case string:
				items = append(items, s)
			default:
				items = append(items, fmt.Sprint(s))
			}
		}
		return items, true
	default:
		return nil, false
	}
}

func normalizeBullets(items []string) []string {
	bullets := make([]string, 0, len(items))
	for _, item := range items {
		if b := normalizeBullet(item); b != "" {
			bullets = append(bullets, b)
		}
	}
	return bullets
}

func normalizeBullet(item string) string {
	item = strings.ReplaceAll(item, `\"`, "")
	item = strings.ReplaceAll(item, `"`, "")
	item = strings.TrimSpace(item)
	if item == "" {
		return ""
	}

	if rest, ok := strings.CutPrefix(item, "•"); ok {
		item = "-" + rest
	}
	if !strings.HasPrefix(item, "-") {
		item = "- " + item
	}
	return item
}

func scanBulletLines(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), `"`)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") {
			continue
		}

		item := strings.TrimSpace(strings.Trim(strings.TrimRight(line, ","), `"`))
		if rest, ok := strings.CutPrefix(item, "•"); ok {
			item = "-" + rest
		}
		// bare markers and horizontal rules
		if strings.Trim(item, "- ") == "" {
			continue
		}
		bullets = append(bullets, item)
	}
	return bullets
}

func paragraphBullets(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, p := range blankLinePattern.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) < 2 {
		return nil
	}

	var bullets []string
	for _, p := range paragraphs {
		if strings.HasPrefix(p, "-") {
			continue
		}
		bullets = append(bullets, "- "+strings.Join(strings.Fields(p), " "))
	}
	return bullets
}
