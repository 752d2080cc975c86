package bulk

import (
	"errors"
	"fmt"

	"github.com/amirbrooks/tasklist/internal/task"
)

// Result reports what a bulk operation did. Changed counts tasks that were
// actually modified; idempotent hits land in Skipped instead.
type Result struct {
	Changed  int         `json:"changed"`
	NotFound []int       `json:"not_found,omitempty"`
	Skipped  []int       `json:"skipped,omitempty"`
	Removed  []task.Task `json:"removed,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// Op names a bulk operation.
type Op int

const (
	OpComplete Op = iota
	OpDelete
	OpPriority
	OpCategory
	OpTag
)

func (o Op) String() string {
	switch o {
	case OpComplete:
		return "complete"
	case OpDelete:
		return "delete"
	case OpPriority:
		return "priority"
	case OpCategory:
		return "category"
	case OpTag:
		return "tag"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Apply dispatches op. Value is the priority, category or tag for the ops
// that take one and is ignored otherwise.
func Apply(repo *task.Repository, op Op, ids []int, value string) Result {
	switch op {
	case OpComplete:
		return Complete(repo, ids)
	case OpDelete:
		return Delete(repo, ids)
	case OpPriority:
		return SetPriority(repo, ids, value)
	case OpCategory:
		return SetCategory(repo, ids, value)
	case OpTag:
		return AddTag(repo, ids, value)
	default:
		return Result{Warnings: []string{fmt.Sprintf("unknown bulk operation %s", op)}}
	}
}

func Complete(repo *task.Repository, ids []int) Result {
	var res Result
	for _, id := range ids {
		_, err := repo.Complete(id)
		switch {
		case err == nil:
			res.Changed++
		case errors.Is(err, task.ErrAlreadyInState):
			res.Skipped = append(res.Skipped, id)
		case errors.Is(err, task.ErrNotFound):
			res.NotFound = append(res.NotFound, id)
		default:
			res.Warnings = append(res.Warnings, err.Error())
		}
	}
	if len(res.Skipped) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("already completed: %s", joinInts(res.Skipped)))
	}
	return res
}

// Delete removes the tasks highest id first and renumbers once, so ids in the
// batch keep referring to the tasks the caller saw.
func Delete(repo *task.Repository, ids []int) Result {
	removed, missing := repo.DeleteMany(ids)
	return Result{
		Changed:  len(removed),
		NotFound: missing,
		Removed:  removed,
	}
}

// SetPriority parses the priority once. An invalid value changes nothing and
// is reported as a warning rather than failing the batch.
func SetPriority(repo *task.Repository, ids []int, value string) Result {
	var res Result
	p, err := task.ParsePriority(value)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("priority unchanged: %v", err))
		res.Skipped = append(res.Skipped, ids...)
		return res
	}
	for _, id := range ids {
		changed, err := repo.SetPriority(id, p)
		switch {
		case errors.Is(err, task.ErrNotFound):
			res.NotFound = append(res.NotFound, id)
		case err != nil:
			res.Warnings = append(res.Warnings, err.Error())
		case changed:
			res.Changed++
		default:
			res.Skipped = append(res.Skipped, id)
		}
	}
	return res
}

func SetCategory(repo *task.Repository, ids []int, value string) Result {
	var res Result
	category, warn := task.NormalizeCategory(value)
	if warn != "" {
		res.Warnings = append(res.Warnings, warn)
	}
	if category == "" {
		res.Warnings = append(res.Warnings, "category unchanged: category is required")
		res.Skipped = append(res.Skipped, ids...)
		return res
	}
	for _, id := range ids {
		changed, err := repo.SetCategory(id, category)
		switch {
		case errors.Is(err, task.ErrNotFound):
			res.NotFound = append(res.NotFound, id)
		case err != nil:
			res.Warnings = append(res.Warnings, err.Error())
		case changed:
			res.Changed++
		default:
			res.Skipped = append(res.Skipped, id)
		}
	}
	return res
}

// AddTag tags every task that has room for it. Tasks already holding
// task.MaxTags tags are skipped and named in a warning.
func AddTag(repo *task.Repository, ids []int, value string) Result {
	var res Result
	tag, warn := task.NormalizeTag(value)
	if warn != "" {
		res.Warnings = append(res.Warnings, warn)
	}
	if tag == "" {
		res.Warnings = append(res.Warnings, "tag unchanged: tag is required")
		res.Skipped = append(res.Skipped, ids...)
		return res
	}
	var full []int
	for _, id := range ids {
		_, err := repo.AddTag(id, tag)
		switch {
		case err == nil:
			res.Changed++
		case errors.Is(err, task.ErrNotFound):
			res.NotFound = append(res.NotFound, id)
		case errors.Is(err, task.ErrAlreadyInState):
			res.Skipped = append(res.Skipped, id)
		case errors.Is(err, task.ErrTagLimit):
			res.Skipped = append(res.Skipped, id)
			full = append(full, id)
		default:
			res.Warnings = append(res.Warnings, err.Error())
		}
	}
	if len(full) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("already at %d tags: %s", task.MaxTags, joinInts(full)))
	}
	return res
}

func joinInts(ids []int) string {
	s := ""
	for i, id := range ids {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(id)
	}
	return s
}
