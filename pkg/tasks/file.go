package tasks

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// DefaultFileName is the conventional name of the tracking file.
const DefaultFileName = "TASKS.md"

// File is an in-memory copy of one tracking file. Task order within each
// section is preserved across parse/render round trips.
type File struct {
	Path  string
	Tasks []Task
}

// Section order in the rendered file. Completed first, matching the
// convention of keeping finished work at the top as a record.
var sectionOrder = []Status{StatusCompleted, StatusInProgress, StatusBacklog}

var headingPattern = regexp.MustCompile(`^##\s+(.+?)\s*$`)

// itemPattern matches one task line:
//
//	- [high] Fix the login flow (@developer): notes go here
//
// Priority, owner, and notes are all optional.
var itemPattern = regexp.MustCompile(`^-\s+(?:\[(\w+)\]\s+)?([^(:]+?)(?:\s+\(@([^)]+)\))?(?::\s*(.*))?\s*$`)

// Parse reads tasks out of the markdown tracking file content. Lines outside
// the three known sections are ignored; the file allows free-form notes and
// decision tables around them.
func Parse(content string) (*File, error) {
	f := &File{}
	current := Status("")

	for _, line := range strings.Split(content, "\n") {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			switch heading := strings.TrimSpace(m[1]); heading {
			case string(StatusCompleted), string(StatusInProgress), string(StatusBacklog):
				current = Status(heading)
			default:
				current = ""
			}
			continue
		}

		if current == "" || !strings.HasPrefix(strings.TrimSpace(line), "- ") {
			continue
		}

		m := itemPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			return nil, errors.Errorf("unparseable task line under %q: %s", current, line)
		}

		task := Task{
			Title:    strings.TrimSpace(m[2]),
			Status:   current,
			Priority: PriorityNormal,
			Owner:    m[3],
			Notes:    m[4],
		}
		if m[1] != "" {
			p := Priority(strings.ToLower(m[1]))
			if !ValidPriority(p) {
				return nil, errors.Errorf("unknown priority %q for task %q", m[1], task.Title)
			}
			task.Priority = p
		}

		f.Tasks = append(f.Tasks, task)
	}

	return f, nil
}

// Render produces the markdown form of the tracking file.
func (f *File) Render() string {
	var b strings.Builder
	b.WriteString("# Tasks\n")

	for _, status := range sectionOrder {
		b.WriteString("\n## " + string(status) + "\n")
		for _, t := range f.Tasks {
			if t.Status != status {
				continue
			}
			b.WriteString(renderTask(t))
		}
	}

	return b.String()
}

func renderTask(t Task) string {
	line := fmt.Sprintf("- [%s] %s", t.Priority, t.Title)
	if t.Owner != "" {
		line += fmt.Sprintf(" (@%s)", t.Owner)
	}
	if t.Notes != "" {
		line += ": " + t.Notes
	}
	return line + "\n"
}

// LoadFile parses the tracking file at path. A missing file yields an empty
// task list so a fresh workspace starts clean.
func LoadFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Path: path}, nil
		}
		return nil, errors.Wrapf(err, "failed to read task file %q", path)
	}

	f, err := Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse task file %q", path)
	}
	f.Path = path
	return f, nil
}

// Save writes the rendered file back to its path.
func (f *File) Save() error {
	if f.Path == "" {
		return errors.New("task file has no path")
	}
	if err := os.WriteFile(f.Path, []byte(f.Render()), 0644); err != nil {
		return errors.Wrapf(err, "failed to write task file %q", f.Path)
	}
	return nil
}

// Add appends a new task to the backlog. Titles share a line with the
// priority, owner, and notes markers, so the marker characters are rejected
// up front; otherwise Save would write a file Parse cannot read back.
func (f *File) Add(title string, priority Priority, notes string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("task title must not be empty")
	}
	if strings.ContainsAny(title, "(:") {
		return errors.Errorf("task title %q must not contain '(' or ':'", title)
	}
	if strings.HasPrefix(strings.TrimSpace(title), "[") {
		return errors.Errorf("task title %q must not start with '['", title)
	}
	if !ValidPriority(priority) {
		return errors.Errorf("unknown priority %q", priority)
	}
	if _, err := f.Find(title); err == nil {
		return errors.Errorf("task %q already exists", title)
	}

	f.Tasks = append(f.Tasks, Task{
		Title:    title,
		Status:   StatusBacklog,
		Priority: priority,
		Notes:    notes,
	})
	return nil
}

// Find returns a pointer to the task with the given title.
func (f *File) Find(title string) (*Task, error) {
	for i := range f.Tasks {
		if f.Tasks[i].Title == title {
			return &f.Tasks[i], nil
		}
	}
	return nil, errors.Wrapf(ErrTaskNotFound, "%q", title)
}

// Start moves a backlog task to In Progress and records the acting agent
// as its owner.
func (f *File) Start(title, owner string) error {
	t, err := f.Find(title)
	if err != nil {
		return err
	}
	if err := t.Transition(StatusInProgress); err != nil {
		return err
	}
	if owner != "" {
		t.Owner = owner
	}
	return nil
}

// Complete moves an in-progress task to Completed.
func (f *File) Complete(title string) error {
	t, err := f.Find(title)
	if err != nil {
		return err
	}
	return t.Transition(StatusCompleted)
}

// ByStatus returns the tasks in the given state, preserving file order.
func (f *File) ByStatus(status Status) []Task {
	var out []Task
	for _, t := range f.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
