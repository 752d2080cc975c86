// Package store persists the task list and the template collection as whole
// files under a workspace root.
package store

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/tasklist/internal/task"
	"github.com/amirbrooks/tasklist/internal/templates"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var (
	ErrInvalid = errors.New("invalid")
	timeNow    = func() time.Time { return time.Now().UTC() }
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DecodeError reports a collection file that exists but cannot be parsed.
// It satisfies errors.Is(err, ErrInvalid).
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalid
}

type Workspace struct {
	Root          string
	Format        string
	TasksPath     string
	TemplatesPath string
	log           *zap.Logger
}

type Options struct {
	Format        string
	TasksFile     string
	TemplatesFile string
	Logger        *zap.Logger
}

// Open prepares a workspace rooted at root. Files are created on the first
// save; relative file names resolve against root.
func Open(root string, opts Options) (*Workspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("%w: workspace root is required", ErrInvalid)
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "", FormatJSON:
		format = FormatJSON
	case FormatYAML, "yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("%w: unknown storage format %q", ErrInvalid, opts.Format)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Workspace{
		Root:   root,
		Format: format,
		log:    logger.Named("store"),
	}
	w.TasksPath = w.resolve(opts.TasksFile, "tasks."+format)
	w.TemplatesPath = w.resolve(opts.TemplatesFile, "templates."+format)
	return w, nil
}

func (w *Workspace) resolve(name, def string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = def
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(w.Root, name)
}

// LoadTasks reads the task list. A missing file is an empty list.
func (w *Workspace) LoadTasks() ([]task.Task, error) {
	var tasks []task.Task
	found, err := w.readCollection(w.TasksPath, &tasks)
	if err != nil {
		return nil, err
	}
	w.log.Debug("loaded tasks", zap.String("path", w.TasksPath), zap.Bool("found", found), zap.Int("count", len(tasks)))
	return tasks, nil
}

// SaveTasks replaces the task file. A list whose task or note ids are not
// dense is refused and the file is left untouched.
func (w *Workspace) SaveTasks(tasks []task.Task) error {
	if err := task.CheckDensity(tasks); err != nil {
		return fmt.Errorf("%w: refusing to save tasks: %v", ErrInvalid, err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	if err := w.writeCollection(w.TasksPath, tasks); err != nil {
		return err
	}
	w.log.Debug("saved tasks", zap.String("path", w.TasksPath), zap.Int("count", len(tasks)))
	return nil
}

// LoadTemplates reads the template collection. A missing file is an empty
// collection.
func (w *Workspace) LoadTemplates() (map[string]templates.Template, error) {
	items := map[string]templates.Template{}
	found, err := w.readCollection(w.TemplatesPath, &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = map[string]templates.Template{}
	}
	w.log.Debug("loaded templates", zap.String("path", w.TemplatesPath), zap.Bool("found", found), zap.Int("count", len(items)))
	return items, nil
}

func (w *Workspace) SaveTemplates(items map[string]templates.Template) error {
	if items == nil {
		items = map[string]templates.Template{}
	}
	if err := w.writeCollection(w.TemplatesPath, items); err != nil {
		return err
	}
	w.log.Debug("saved templates", zap.String("path", w.TemplatesPath), zap.Int("count", len(items)))
	return nil
}

func (w *Workspace) readCollection(path string, out any) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return true, nil
	}
	if err := Unmarshal(formatOf(path, w.Format), b, out); err != nil {
		return true, &DecodeError{Path: path, Err: err}
	}
	return true, nil
}

func (w *Workspace) writeCollection(path string, v any) error {
	b, err := Marshal(formatOf(path, w.Format), v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := WriteFileAtomic(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// formatOf picks the codec from the file extension, falling back to the
// workspace format.
func formatOf(path, def string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return def
	}
}

func Marshal(format string, v any) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
}

func Unmarshal(format string, b []byte, out any) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(b, out)
	default:
		return json.Unmarshal(b, out)
	}
}

// NewULID returns an upper-case ULID for file names.
func NewULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, ".tmp-"+NewULID())
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
