// Package lesson loads the lesson text: sections, cards, quiz items and narration scripts.
package lesson

import (
	_ "embed"
	"fmt"
	"strings"

	"ohms_lab/internal/lab/quiz"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// characterPrefix namespaces character cards in narration keys, e.g. "character.voltage".
const characterPrefix = "character."

// Content is the whole lesson as served to the client.
type Content struct {
	Title      string            `yaml:"title" json:"title" validate:"required"`
	Tagline    string            `yaml:"tagline" json:"tagline"`
	Footer     string            `yaml:"footer" json:"footer"`
	Sections   []Section         `yaml:"sections" json:"sections" validate:"len=5,unique=ID,dive"`
	Characters []Card            `yaml:"characters" json:"characters" validate:"required,unique=ID,dive"`
	Analogy    Analogy           `yaml:"analogy" json:"analogy"`
	Functions  []FunctionCard    `yaml:"functions" json:"functions" validate:"dive"`
	Quiz       []QuizItem        `yaml:"quiz" json:"quiz" validate:"required,unique=ID,dive"`
	Scripts    map[string]string `yaml:"scripts" json:"scripts" validate:"required,dive,keys,required,endkeys,required"`
}

// Section is one navigation entry.
type Section struct {
	ID       string `yaml:"id" json:"id" validate:"required,oneof=Theory Lab Functions Protection Summary"`
	NavLabel string `yaml:"nav_label" json:"nav_label" validate:"required"`
	Icon     string `yaml:"icon" json:"icon"`
	Heading  string `yaml:"heading" json:"heading" validate:"required"`
	Script   string `yaml:"script" json:"script,omitempty"`
}

// Card introduces one of the three quantities.
type Card struct {
	ID    string `yaml:"id" json:"id" validate:"required"`
	Title string `yaml:"title" json:"title" validate:"required"`
	Unit  string `yaml:"unit" json:"unit" validate:"required"`
	Desc  string `yaml:"desc" json:"desc" validate:"required"`
	Color string `yaml:"color" json:"color"`
	Icon  string `yaml:"icon" json:"icon"`
}

// Analogy is the water comparison box.
type Analogy struct {
	Heading string `yaml:"heading" json:"heading"`
	Text    string `yaml:"text" json:"text"`
}

// FunctionCard describes a use of resistors.
type FunctionCard struct {
	Title string `yaml:"title" json:"title" validate:"required"`
	Text  string `yaml:"text" json:"text" validate:"required"`
	Tag   string `yaml:"tag" json:"tag"`
	Color string `yaml:"color" json:"color"`
	Icon  string `yaml:"icon" json:"icon"`
}

// QuizItem is a summary question. Answers are not sent with the lesson; they are
// revealed per session.
type QuizItem struct {
	ID       string `yaml:"id" json:"id" validate:"required"`
	Question string `yaml:"question" json:"question" validate:"required"`
	Answer   string `yaml:"answer" json:"-" validate:"required"`
	Icon     string `yaml:"icon" json:"icon"`
}

// Default parses the embedded lesson.
func Default() (*Content, error) {
	return Parse(defaultContent)
}

// Parse decodes and validates lesson YAML.
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode lesson: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("validate lesson: %w", err)
	}
	for _, s := range c.Sections {
		if s.Script == "" {
			continue
		}
		if _, ok := c.Scripts[s.Script]; !ok {
			return nil, fmt.Errorf("validate lesson: section %s refers to missing script %q", s.ID, s.Script)
		}
	}
	return &c, nil
}

// Narration returns the text to read for a key: a script name or "character.<id>".
func (c *Content) Narration(key string) (string, bool) {
	if id, ok := strings.CutPrefix(key, characterPrefix); ok {
		for _, card := range c.Characters {
			if card.ID == id {
				return fmt.Sprintf("%s mäts i %s. %s", card.Title, card.Unit, card.Desc), true
			}
		}
		return "", false
	}
	text, ok := c.Scripts[key]
	return text, ok
}

// QuizItems converts the quiz to board items.
func (c *Content) QuizItems() []quiz.Item {
	out := make([]quiz.Item, 0, len(c.Quiz))
	for _, q := range c.Quiz {
		out = append(out, quiz.Item{ID: q.ID, Question: q.Question, Answer: q.Answer, Icon: q.Icon})
	}
	return out
}
