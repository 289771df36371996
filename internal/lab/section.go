package lab

import (
	"errors"
	"fmt"
	"strings"
)

// Section is a navigation target in the lesson.
type Section string

const (
	Theory     Section = "Theory"
	Lab        Section = "Lab"
	Functions  Section = "Functions"
	Protection Section = "Protection"
	Summary    Section = "Summary"
)

// Sections lists every section in navigation order.
var Sections = []Section{Theory, Lab, Functions, Protection, Summary}

// ErrUnknownSection is returned by ParseSection.
var ErrUnknownSection = errors.New("unknown section")

// ParseSection matches a section name case-insensitively.
func ParseSection(s string) (Section, error) {
	s = strings.TrimSpace(s)
	for _, sec := range Sections {
		if strings.EqualFold(s, string(sec)) {
			return sec, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
}
