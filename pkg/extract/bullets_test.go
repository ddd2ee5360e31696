package extract_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tcard/pkg/extract"
)

func TestBullets(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		strategy extract.Strategy
	}{
		{
			name:     "direct json is returned as-is",
			input:    `{"bullets": ["Led team", "- Shipped v2"]}`,
			expected: []string{"Led team", "- Shipped v2"},
			strategy: extract.StrategyDirect,
		},
		{
			name:     "direct json with single string",
			input:    `  {"bullets": "- Only one"}  `,
			expected: []string{"- Only one"},
			strategy: extract.StrategyDirect,
		},
		{
			name:     "json block with trailing prose",
			input:    "Here you go:\n{\"bullets\": [\"- Led team\", \"Improved metrics\"]}\nThanks",
			expected: []string{"- Led team", "- Improved metrics"},
			strategy: extract.StrategyBlock,
		},
		{
			name:     "json block at the end",
			input:    "Bullets:\n{\"bullets\": [\"• Cut costs 20%\", \"  \\\"Grew\\\" revenue  \", \"\"]}\n",
			expected: []string{"- Cut costs 20%", "- Grew revenue"},
			strategy: extract.StrategyAnchored,
		},
		{
			name:     "marked lines",
			input:    "- Did X\n• Did Y",
			expected: []string{"- Did X", "- Did Y"},
			strategy: extract.StrategyLines,
		},
		{
			name:     "quoted lines from a broken json list",
			input:    "{\"bullets\": [\n  \"- Built a pipeline\",\n  \"- Reduced latency\"\n",
			expected: []string{"- Built a pipeline", "- Reduced latency"},
			strategy: extract.StrategyLines,
		},
		{
			name:     "lines skip rules and bare markers",
			input:    "Intro\n---\n- Real bullet\n-\n",
			expected: []string{"- Real bullet"},
			strategy: extract.StrategyLines,
		},
		{
			name:     "paragraphs",
			input:    "Led a team of five engineers.\n\nImproved deploy time\nby half.\n \nMentored interns.",
			expected: []string{"- Led a team of five engineers.", "- Improved deploy time by half.", "- Mentored interns."},
			strategy: extract.StrategyParagraphs,
		},
		{
			name:     "empty bullets list is a success",
			input:    `{"bullets": []}`,
			expected: []string{},
			strategy: extract.StrategyDirect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := extract.Bullets(tt.input)
			gt.NoError(t, err)
			gt.Equal(t, res.Bullets, tt.expected)
			gt.Equal(t, res.Strategy, tt.strategy)
		})
	}
}

func TestBulletsFailure(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"This is just a sentence about work without any markers.",
		"A single paragraph\nspanning two lines.",
		`{"items": ["a"]}`,
	}

	for _, input := range inputs {
		res, err := extract.Bullets(input)
		gt.Error(t, err)
		gt.Nil(t, res)
		gt.True(t, errors.Is(err, extract.ErrNoBullets))
	}
}

func TestBulletsOrder(t *testing.T) {
	res, err := extract.Bullets("- c\n- a\n- b")
	gt.NoError(t, err)
	gt.Equal(t, res.Bullets, []string{"- c", "- a", "- b"})
}

func TestBulletsIdempotent(t *testing.T) {
	input := "Sure\n{\"bullets\": [\"x\", \"y\"]} ok"
	first, err := extract.Bullets(input)
	gt.NoError(t, err)
	second, err := extract.Bullets(input)
	gt.NoError(t, err)
	gt.Equal(t, first, second)
}
