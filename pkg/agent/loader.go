package agent

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/handofflabs/baton/pkg/logger"
)

// Loader handles loading of agent definitions from disk
type Loader struct {
	agentDirs []string
	include   []string // doublestar patterns relative to each agent dir
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader) error

// WithAgentDirs sets custom agent directories
func WithAgentDirs(dirs ...string) LoaderOption {
	return func(l *Loader) error {
		if len(dirs) == 0 {
			return errors.New("at least one agent directory must be specified")
		}
		l.agentDirs = dirs
		return nil
	}
}

// WithIncludePatterns restricts discovery to files matching the given
// doublestar patterns, relative to each agent directory.
func WithIncludePatterns(patterns ...string) LoaderOption {
	return func(l *Loader) error {
		l.include = patterns
		return nil
	}
}

// WithDefaultDirs sets the default agent directories (./agents, ~/.baton/agents)
func WithDefaultDirs() LoaderOption {
	return func(l *Loader) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		l.agentDirs = []string{
			"./agents", // Repository-specific (higher precedence)
			filepath.Join(homeDir, ".baton", "agents"), // User home directory
		}
		return nil
	}
}

// NewLoader creates a new agent loader with optional configuration
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, errors.Wrap(err, "failed to apply agent loader option")
		}
	}

	if len(l.agentDirs) == 0 {
		if err := WithDefaultDirs()(l); err != nil {
			return nil, errors.Wrap(err, "failed to apply default agent directories")
		}
	}
	if len(l.include) == 0 {
		l.include = []string{"**/*.md"}
	}

	return l, nil
}

// findAgentFile searches for an agent file in the configured directories
func (l *Loader) findAgentFile(agentName string) (string, error) {
	possibleNames := []string{
		agentName + ".md",
		agentName,
	}

	for _, dir := range l.agentDirs {
		for _, name := range possibleNames {
			fullPath := filepath.Join(dir, name)
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
	}

	return "", errors.Errorf("agent '%s' not found in directories: %v", agentName, l.agentDirs)
}

// parseFrontmatter extracts YAML frontmatter and body content from an agent markdown file
func (l *Loader) parseFrontmatter(content string) (Metadata, string, error) {
	var metadata Metadata

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	source := []byte(content)
	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(source, &buf, parser.WithContext(pctx)); err != nil {
		return metadata, content, errors.Wrap(err, "failed to convert markdown")
	}

	metaData := meta.Get(pctx)
	if metaData != nil {
		if name, ok := metaData["name"].(string); ok {
			metadata.Name = name
		}
		if description, ok := metaData["description"].(string); ok {
			metadata.Description = description
		}
		if model, ok := metaData["model"].(string); ok {
			metadata.Model = model
		}
		if infer, ok := metaData["infer"].(bool); ok {
			metadata.Infer = infer
		}
		if tools := metaData["tools"]; tools != nil {
			metadata.Tools = parseStringArrayField(tools)
		}
		if skills := metaData["skills"]; skills != nil {
			metadata.Skills = parseStringArrayField(skills)
		}
		if handoffs := metaData["handoffs"]; handoffs != nil {
			decls, err := parseHandoffsField(handoffs)
			if err != nil {
				return metadata, content, err
			}
			metadata.Handoffs = decls
		}
	}

	bodyContent := extractBodyContent(content)
	return metadata, bodyContent, nil
}

// parseStringArrayField handles both []interface{} (YAML array) and string (comma-separated) formats
func parseStringArrayField(field interface{}) []string {
	switch v := field.(type) {
	case []interface{}:
		var result []string
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, strings.TrimSpace(str))
			}
		}
		return result
	case string:
		if v == "" {
			return []string{}
		}
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	default:
		return []string{}
	}
}

// parseHandoffsField decodes the handoffs frontmatter list, preserving
// declaration order.
func parseHandoffsField(field interface{}) ([]HandoffDecl, error) {
	items, ok := field.([]interface{})
	if !ok {
		return nil, errors.New("handoffs must be a list")
	}

	decls := make([]HandoffDecl, 0, len(items))
	for i, item := range items {
		entry, ok := asStringKeyedMap(item)
		if !ok {
			return nil, errors.Errorf("handoffs[%d] must be a mapping", i)
		}

		var decl HandoffDecl
		if label, ok := entry["label"].(string); ok {
			decl.Label = label
		}
		if target, ok := entry["agent"].(string); ok {
			decl.Agent = target
		}
		if prompt, ok := entry["prompt"].(string); ok {
			decl.Prompt = prompt
		}
		if send, ok := entry["send"].(bool); ok {
			decl.Send = send
		}

		if decl.Label == "" {
			return nil, errors.Errorf("handoffs[%d] is missing a label", i)
		}
		if decl.Agent == "" {
			return nil, errors.Errorf("handoffs[%d] (%s) is missing a target agent", i, decl.Label)
		}

		decls = append(decls, decl)
	}

	return decls, nil
}

// asStringKeyedMap normalizes the two map shapes goldmark-meta can produce
func asStringKeyedMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// extractBodyContent extracts the markdown body content after YAML frontmatter
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.Join(lines[frontmatterEnd+1:], "\n")
}

// Load loads a single agent by name
func (l *Loader) Load(ctx context.Context, agentName string) (*Agent, error) {
	logger.G(ctx).WithField("agent", agentName).Debug("Loading agent")

	agentPath, err := l.findAgentFile(agentName)
	if err != nil {
		return nil, err
	}

	logger.G(ctx).WithField("path", agentPath).Debug("Found agent file")

	return l.LoadFile(ctx, agentPath)
}

// LoadFile loads an agent definition from an explicit file path
func (l *Loader) LoadFile(ctx context.Context, agentPath string) (*Agent, error) {
	content, err := os.ReadFile(agentPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read agent file '%s'", agentPath)
	}

	metadata, systemPrompt, err := l.parseFrontmatter(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse frontmatter in agent '%s'", agentPath)
	}

	if metadata.Name == "" {
		metadata.Name = strings.TrimSuffix(filepath.Base(agentPath), ".md")
	}

	return &Agent{
		Metadata:     metadata,
		SystemPrompt: systemPrompt,
		Path:         agentPath,
	}, nil
}

// LoadAll returns all available agents from the configured directories.
// Files are matched against the include patterns; when the same agent name
// appears in multiple directories the earlier directory wins.
func (l *Loader) LoadAll(ctx context.Context) ([]*Agent, error) {
	var agents []*Agent
	seen := make(map[string]bool)

	for _, dir := range l.agentDirs {
		paths, err := l.matchDir(dir)
		if err != nil {
			logger.G(ctx).WithField("dir", dir).Debug("Agent directory not found, skipping")
			continue
		}

		for _, path := range paths {
			agentName := strings.TrimSuffix(filepath.Base(path), ".md")
			if seen[agentName] {
				continue
			}

			loaded, err := l.LoadFile(ctx, path)
			if err != nil {
				logger.G(ctx).WithField("agent", agentName).WithError(err).Warn("Failed to load agent, skipping")
				continue
			}

			agents = append(agents, loaded)
			seen[agentName] = true
		}
	}

	logger.G(ctx).WithField("count", len(agents)).Info("Loaded agents")
	return agents, nil
}

// matchDir lists the files under dir that match the include patterns
func (l *Loader) matchDir(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range l.include {
			ok, err := doublestar.Match(pattern, rel)
			if err != nil {
				return errors.Wrapf(err, "invalid include pattern %q", pattern)
			}
			if ok {
				paths = append(paths, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// Validate checks that an agent definition carries all required fields
func (l *Loader) Validate(a *Agent) error {
	if a.Metadata.Name == "" {
		return errors.New("agent name is required")
	}
	if a.Metadata.Description == "" {
		return errors.New("agent description is required")
	}
	if a.Metadata.Model == "" {
		return errors.New("agent model is required")
	}
	if strings.TrimSpace(a.SystemPrompt) == "" {
		return errors.New("agent system prompt cannot be empty")
	}
	for _, token := range a.Metadata.Tools {
		if strings.TrimSpace(token) == "" {
			return errors.New("agent tools must not contain empty tokens")
		}
	}
	return nil
}
