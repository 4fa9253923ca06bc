// Package parser extracts YAML front-matter from skill and document
// Markdown files.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NeighborEntry is one escalation edge as declared in front-matter.
type NeighborEntry struct {
	Skill string `yaml:"skill"`
	When  string `yaml:"when"`
}

// DocumentEntry is one document declaration in front-matter. Exactly one
// of Path or Glob should be set; Glob entries expand to many documents.
type DocumentEntry struct {
	Path        string `yaml:"path"`
	Glob        string `yaml:"glob"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

// SkillFile holds the parsed contents of a SKILL.md.
type SkillFile struct {
	Name        string          `yaml:"name"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Category    string          `yaml:"category"`
	Triggers    []string        `yaml:"triggers"`
	Neighbors   []NeighborEntry `yaml:"neighbors"`
	Documents   []DocumentEntry `yaml:"documents"`

	Body string `yaml:"-"`
}

// ParseSkill extracts the front-matter block of a SKILL.md into a
// SkillFile. A file without front-matter or with invalid YAML yields an
// error; skill files are a machine contract, unlike plain documents.
func ParseSkill(data []byte) (*SkillFile, error) {
	block, body, ok := splitFrontmatter(data)
	if !ok {
		return nil, fmt.Errorf("parser: missing front-matter")
	}

	var sf SkillFile
	if err := yaml.Unmarshal(block, &sf); err != nil {
		return nil, fmt.Errorf("parser: front-matter: %w", err)
	}
	sf.Body = body

	if sf.Title == "" {
		sf.Title = firstHeading(body)
	}
	return &sf, nil
}

// DocFile holds the parsed contents of a plain document file.
type DocFile struct {
	Title       string
	Description string
	Body        string
}

// ParseDoc extracts title and description from a reference/handbook
// file. Front-matter is optional; invalid YAML falls back to treating
// the whole file as body. Title comes from front-matter or the first H1,
// description from front-matter or the first body paragraph.
func ParseDoc(data []byte) *DocFile {
	block, body, ok := splitFrontmatter(data)

	var fm struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
	}
	if ok {
		if err := yaml.Unmarshal(block, &fm); err != nil {
			body = string(data)
		}
	}

	d := &DocFile{
		Title:       fm.Title,
		Description: fm.Description,
		Body:        body,
	}
	if d.Title == "" {
		d.Title = firstHeading(body)
	}
	if d.Description == "" {
		d.Description = firstParagraph(body)
	}
	return d
}

// splitFrontmatter separates a YAML block between leading --- fences
// from the Markdown body. ok is false when no front-matter is present.
func splitFrontmatter(data []byte) (block []byte, body string, ok bool) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), false
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), false
	}

	block = rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body = strings.TrimLeft(string(afterDelim), "\n\r")
	return block, body, true
}

// firstHeading returns the text of the first H1 heading, or "".
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// firstParagraph returns the first non-heading, non-empty line of body,
// truncated so derived descriptions stay short.
func firstParagraph(body string) string {
	const maxLen = 200
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if len(trimmed) > maxLen {
			return trimmed[:maxLen]
		}
		return trimmed
	}
	return ""
}
