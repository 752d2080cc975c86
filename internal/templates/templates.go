// Package templates keeps named, reusable task presets.
package templates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amirbrooks/tasklist/internal/task"
)

type Template struct {
	Title    string        `json:"title" yaml:"title"`
	Priority task.Priority `json:"priority" yaml:"priority"`
	Category string        `json:"category,omitempty" yaml:"category,omitempty"`
	Tags     []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Repository is the in-memory template collection keyed by name.
type Repository struct {
	items map[string]Template
}

func NewRepository(items map[string]Template) *Repository {
	r := &Repository{items: make(map[string]Template, len(items))}
	for name, t := range items {
		if !t.Priority.Valid() {
			t.Priority = task.PriorityMedium
		}
		r.items[name] = t.clone()
	}
	return r
}

// Templates returns a copy of the collection for persisting.
func (r *Repository) Templates() map[string]Template {
	out := make(map[string]Template, len(r.items))
	for name, t := range r.items {
		out[name] = t.clone()
	}
	return out
}

func (r *Repository) Len() int {
	return len(r.items)
}

// Names lists template names in sorted order.
func (r *Repository) Names() []string {
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type CreateInput struct {
	Title    string
	Priority string
	Category string
	Tags     []string
}

// Create stores a template under name, replacing any existing one. The
// returned flag reports whether a template was overwritten.
func (r *Repository) Create(name string, in CreateInput) (Template, bool, []string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Template{}, false, nil, &task.ValidationError{Field: "name", Reason: "template name is required"}
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Template{}, false, nil, &task.ValidationError{Field: "title", Reason: "title is required"}
	}
	if n := len([]rune(title)); n > task.MaxTitleLen {
		return Template{}, false, nil, &task.ValidationError{Field: "title", Reason: fmt.Sprintf("%d characters exceeds the %d limit", n, task.MaxTitleLen)}
	}
	priority := task.PriorityMedium
	if strings.TrimSpace(in.Priority) != "" {
		p, err := task.ParsePriority(in.Priority)
		if err != nil {
			return Template{}, false, nil, err
		}
		priority = p
	}
	var warnings []string
	category, warn := task.NormalizeCategory(in.Category)
	if warn != "" {
		warnings = append(warnings, warn)
	}
	tags, tagWarnings := task.NormalizeTags(in.Tags, 0)
	warnings = append(warnings, tagWarnings...)

	t := Template{Title: title, Priority: priority, Category: category, Tags: tags}
	_, exists := r.items[name]
	r.items[name] = t
	return t.clone(), exists, warnings, nil
}

func (r *Repository) Get(name string) (Template, error) {
	t, ok := r.items[strings.TrimSpace(name)]
	if !ok {
		return Template{}, notFound(name)
	}
	return t.clone(), nil
}

func (r *Repository) Delete(name string) error {
	name = strings.TrimSpace(name)
	if _, ok := r.items[name]; !ok {
		return notFound(name)
	}
	delete(r.items, name)
	return nil
}

// Overrides replaces template defaults when instantiating. Empty fields keep
// the template's value; DueDate is never part of a template.
type Overrides struct {
	Title    string
	Priority string
	DueDate  string
	Category string
	Tags     []string
}

// Instantiate builds the input for task.Repository.Add from a template and
// overrides. It does not create the task.
func Instantiate(t Template, o Overrides) task.AddInput {
	in := task.AddInput{
		Title:    t.Title,
		Priority: t.Priority.String(),
		Category: t.Category,
		Tags:     append([]string(nil), t.Tags...),
		DueDate:  strings.TrimSpace(o.DueDate),
	}
	if s := strings.TrimSpace(o.Title); s != "" {
		in.Title = s
	}
	if s := strings.TrimSpace(o.Priority); s != "" {
		in.Priority = s
	}
	if s := strings.TrimSpace(o.Category); s != "" {
		in.Category = s
	}
	if len(o.Tags) > 0 {
		in.Tags = append([]string(nil), o.Tags...)
	}
	return in
}

// Import adds templates whose names are not taken yet. Existing templates
// are never overwritten; their names come back in skipped, sorted.
func (r *Repository) Import(items map[string]Template) (int, []string) {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	added := 0
	var skipped []string
	for _, name := range names {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		if _, exists := r.items[key]; exists {
			skipped = append(skipped, key)
			continue
		}
		t := items[name].clone()
		if !t.Priority.Valid() {
			t.Priority = task.PriorityMedium
		}
		r.items[key] = t
		added++
	}
	return added, skipped
}

func (t Template) clone() Template {
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	return t
}

func notFound(name string) error {
	return &task.NotFoundError{Kind: "template", Key: fmt.Sprintf("%q", name)}
}
