// Package skills discovers standalone reference documents that personas can
// pull into their working context. Each skill is a directory containing a
// SKILL.md file whose YAML frontmatter names and describes the skill; the
// body is the guidance itself. This package only defines and validates skill
// content, loading it into a model's context is the host's job.
package skills

// Skill represents a discovered skill with its metadata
type Skill struct {
	Name        string // Unique name from frontmatter
	Description string // Brief description for selection heuristics
	Directory   string // Full path to the skill directory
	Content     string // Body of SKILL.md, frontmatter stripped
}

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}
