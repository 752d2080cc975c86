package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrTagLimit = errors.New("tag limit reached")

// Repository is the in-memory task collection for one command. It is built
// from a loaded snapshot and handed back to the store through Tasks.
type Repository struct {
	tasks []Task
	now   func() time.Time
}

type Option func(*Repository)

// WithClock overrides the time source used for timestamps and "today".
func WithClock(now func() time.Time) Option {
	if now == nil {
		return nil
	}
	return func(r *Repository) {
		r.now = now
	}
}

// NewRepository copies tasks and re-establishes dense task and note ids in
// their current order. Tasks with no priority default to medium.
func NewRepository(tasks []Task, opts ...Option) *Repository {
	r := &Repository{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.tasks = make([]Task, 0, len(tasks))
	for _, t := range tasks {
		t = t.clone()
		if !t.Priority.Valid() {
			t.Priority = PriorityMedium
		}
		renumberNotes(&t)
		r.tasks = append(r.tasks, t)
	}
	r.renumber()
	return r
}

// Tasks returns a deep copy of the collection in storage order.
func (r *Repository) Tasks() []Task {
	out := make([]Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.clone()
	}
	return out
}

func (r *Repository) Len() int {
	return len(r.tasks)
}

// Now is the repository clock in UTC with the monotonic reading stripped so
// that stored timestamps round-trip exactly. Date arithmetic still uses the
// local calendar through r.now.
func (r *Repository) Now() time.Time {
	return r.now().UTC().Round(0)
}

type AddInput struct {
	Title    string
	Priority string
	DueDate  string
	Category string
	Tags     []string
}

// Add appends a new pending task with the next id. The due date accepts the
// same forms as ResolveDueInput. Overlong categories and
// tags are truncated and extra tags dropped; each adjustment is returned as a
// warning.
func (r *Repository) Add(in AddInput) (Task, []string, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return Task{}, nil, err
	}
	priority := PriorityMedium
	if strings.TrimSpace(in.Priority) != "" {
		if priority, err = ParsePriority(in.Priority); err != nil {
			return Task{}, nil, err
		}
	}
	due := strings.TrimSpace(in.DueDate)
	if due != "" {
		if due, err = ResolveDueInput(due, r.now()); err != nil {
			return Task{}, nil, err
		}
	}
	var warnings []string
	category, warn := NormalizeCategory(in.Category)
	if warn != "" {
		warnings = append(warnings, warn)
	}
	tags, tagWarnings := NormalizeTags(in.Tags, MaxTags)
	warnings = append(warnings, tagWarnings...)

	t := Task{
		ID:        len(r.tasks) + 1,
		Title:     title,
		Priority:  priority,
		CreatedAt: r.Now(),
		DueDate:   due,
		Category:  category,
		Tags:      tags,
	}
	r.tasks = append(r.tasks, t)
	return t.clone(), warnings, nil
}

func (r *Repository) FindByID(id int) (Task, error) {
	i := r.index(id)
	if i < 0 {
		return Task{}, taskNotFound(id)
	}
	return r.tasks[i].clone(), nil
}

// Complete marks a task done. A task that is already done yields an
// *AlreadyInStateError and is left untouched.
func (r *Repository) Complete(id int) (Task, error) {
	return r.setCompleted(id, true)
}

// Reopen marks a completed task pending again.
func (r *Repository) Reopen(id int) (Task, error) {
	return r.setCompleted(id, false)
}

func (r *Repository) setCompleted(id int, done bool) (Task, error) {
	i := r.index(id)
	if i < 0 {
		return Task{}, taskNotFound(id)
	}
	t := &r.tasks[i]
	if t.Completed == done {
		state := "pending"
		if done {
			state = "completed"
		}
		return t.clone(), &AlreadyInStateError{ID: id, State: state}
	}
	t.Completed = done
	return t.clone(), nil
}

type UpdateOp int

const (
	OpKeep UpdateOp = iota
	OpSet
	OpClear
)

// Update describes the change to one field in an Edit. The zero value keeps
// the field unchanged.
type Update[T any] struct {
	Op    UpdateOp
	Value T
}

func Set[T any](v T) Update[T] {
	return Update[T]{Op: OpSet, Value: v}
}

func Clear[T any]() Update[T] {
	return Update[T]{Op: OpClear}
}

type EditInput struct {
	Title    Update[string]
	Priority Update[string]
	DueDate  Update[string]
	Category Update[string]
	Tags     Update[[]string]
}

type EditResult struct {
	Task     Task
	Changed  bool
	Warnings []string
}

// Edit applies each requested field change independently. An invalid value
// leaves its field unchanged and is reported as a warning; the remaining
// fields are still applied.
func (r *Repository) Edit(id int, in EditInput) (EditResult, error) {
	i := r.index(id)
	if i < 0 {
		return EditResult{}, taskNotFound(id)
	}
	t := &r.tasks[i]
	var res EditResult
	warn := func(format string, args ...any) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(format, args...))
	}

	switch in.Title.Op {
	case OpSet:
		if title, err := validateTitle(in.Title.Value); err != nil {
			warn("title unchanged: %v", err)
		} else if title != t.Title {
			t.Title = title
			res.Changed = true
		}
	case OpClear:
		warn("title unchanged: title cannot be removed")
	case OpKeep:
	}

	switch in.Priority.Op {
	case OpSet:
		if p, err := ParsePriority(in.Priority.Value); err != nil {
			warn("priority unchanged: %v", err)
		} else if p != t.Priority {
			t.Priority = p
			res.Changed = true
		}
	case OpClear:
		if t.Priority != PriorityMedium {
			t.Priority = PriorityMedium
			res.Changed = true
		}
	case OpKeep:
	}

	switch in.DueDate.Op {
	case OpSet:
		if due, err := ResolveDueInput(in.DueDate.Value, r.now()); err != nil {
			warn("due date unchanged: %v", err)
		} else if due != t.DueDate {
			t.DueDate = due
			res.Changed = true
		}
	case OpClear:
		if t.DueDate != "" {
			t.DueDate = ""
			res.Changed = true
		}
	case OpKeep:
	}

	switch in.Category.Op {
	case OpSet:
		category, w := NormalizeCategory(in.Category.Value)
		if w != "" {
			warn("%s", w)
		}
		if category != t.Category {
			t.Category = category
			res.Changed = true
		}
	case OpClear:
		if t.Category != "" {
			t.Category = ""
			res.Changed = true
		}
	case OpKeep:
	}

	switch in.Tags.Op {
	case OpSet:
		tags, ws := NormalizeTags(in.Tags.Value, MaxTags)
		res.Warnings = append(res.Warnings, ws...)
		if !equalStrings(tags, t.Tags) {
			t.Tags = tags
			res.Changed = true
		}
	case OpClear:
		if len(t.Tags) > 0 {
			t.Tags = nil
			res.Changed = true
		}
	case OpKeep:
	}

	if res.Changed {
		now := r.Now()
		t.UpdatedAt = &now
	}
	res.Task = t.clone()
	return res, nil
}

// SetPriority is Edit restricted to the priority field.
func (r *Repository) SetPriority(id int, p Priority) (bool, error) {
	i := r.index(id)
	if i < 0 {
		return false, taskNotFound(id)
	}
	if !p.Valid() {
		return false, &ValidationError{Field: "priority", Reason: p.String()}
	}
	t := &r.tasks[i]
	if t.Priority == p {
		return false, nil
	}
	t.Priority = p
	r.touch(t)
	return true, nil
}

// SetCategory assigns an already normalized category.
func (r *Repository) SetCategory(id int, category string) (bool, error) {
	i := r.index(id)
	if i < 0 {
		return false, taskNotFound(id)
	}
	t := &r.tasks[i]
	if t.Category == category {
		return false, nil
	}
	t.Category = category
	r.touch(t)
	return true, nil
}

// AddTag appends a normalized tag. A tag already present yields an
// *AlreadyInStateError; a task holding MaxTags tags yields ErrTagLimit.
func (r *Repository) AddTag(id int, tag string) (Task, error) {
	i := r.index(id)
	if i < 0 {
		return Task{}, taskNotFound(id)
	}
	tag, _ = NormalizeTag(tag)
	if tag == "" {
		return Task{}, &ValidationError{Field: "tag", Reason: "tag is required"}
	}
	t := &r.tasks[i]
	if t.HasTag(tag) {
		return t.clone(), &AlreadyInStateError{ID: id, State: "tagged " + tag}
	}
	if len(t.Tags) >= MaxTags {
		return t.clone(), fmt.Errorf("task %d: %w (%d)", id, ErrTagLimit, MaxTags)
	}
	t.Tags = append(t.Tags, tag)
	r.touch(t)
	return t.clone(), nil
}

// Delete removes a task with its notes and renumbers the remaining tasks.
func (r *Repository) Delete(id int) (Task, error) {
	i := r.index(id)
	if i < 0 {
		return Task{}, taskNotFound(id)
	}
	removed := r.tasks[i]
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	r.renumber()
	return removed, nil
}

// DeleteMany removes every listed task, working from the highest id down, and
// renumbers once at the end. Removed tasks are returned in deletion order and
// missing ids in ascending order.
func (r *Repository) DeleteMany(ids []int) ([]Task, []int) {
	order := uniqueInts(ids)
	sort.Sort(sort.Reverse(sort.IntSlice(order)))
	var removed []Task
	var missing []int
	for _, id := range order {
		i := r.index(id)
		if i < 0 {
			missing = append(missing, id)
			continue
		}
		removed = append(removed, r.tasks[i])
		r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	}
	r.renumber()
	sort.Ints(missing)
	return removed, missing
}

type ListOptions struct {
	Filter   Filter
	Category string
	Tag      string
}

// List returns the matching tasks sorted by priority, then id.
func (r *Repository) List(opts ListOptions) []Task {
	today := r.now()
	category := strings.ToLower(strings.TrimSpace(opts.Category))
	var out []Task
	for i := range r.tasks {
		t := &r.tasks[i]
		if !matchesFilter(t, opts.Filter, today) {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		if opts.Tag != "" && !t.HasTag(opts.Tag) {
			continue
		}
		out = append(out, t.clone())
	}
	SortTasks(out)
	return out
}

func matchesFilter(t *Task, f Filter, today time.Time) bool {
	switch f {
	case FilterAll:
		return true
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	case FilterOverdue:
		return t.IsOverdue(today)
	default:
		return false
	}
}

// SortTasks orders tasks by priority rank (high first), then id ascending.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority < tasks[j].Priority
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// Search returns tasks whose title contains query, ignoring case. A blank
// query matches nothing.
func (r *Repository) Search(query string) []Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Task
	for _, t := range r.tasks {
		if strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, t.clone())
		}
	}
	return out
}

// CheckDensity verifies that task ids, and each task's note ids, are exactly
// 1..N in order.
func CheckDensity(tasks []Task) error {
	for i, t := range tasks {
		if t.ID != i+1 {
			return fmt.Errorf("%w: task at position %d has id %d", ErrValidation, i+1, t.ID)
		}
		for j, n := range t.Notes {
			if n.ID != j+1 {
				return fmt.Errorf("%w: task %d note at position %d has id %d", ErrValidation, t.ID, j+1, n.ID)
			}
		}
	}
	return nil
}

func (r *Repository) touch(t *Task) {
	now := r.Now()
	t.UpdatedAt = &now
}

func (r *Repository) index(id int) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) renumber() {
	for i := range r.tasks {
		r.tasks[i].ID = i + 1
	}
}

func uniqueInts(in []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
