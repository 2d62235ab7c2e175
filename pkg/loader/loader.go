// Package loader reads curriculum documents from JSON or YAML files.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/metrics"
	"github.com/vanderheijden86/pensum/pkg/model"
)

// FileEnvVar is the name of the environment variable pointing at a
// curriculum file. It wins over directory lookup.
const FileEnvVar = "PENSUM_FILE"

// PreferredNames defines the lookup order for curriculum files in a directory.
var PreferredNames = []string{"curriculum.json", "pensum.json", "curriculum.yaml", "curriculum.yml"}

// ErrNotFound is returned when no curriculum file can be located.
var ErrNotFound = errors.New("no curriculum file found")

// Format is the encoding of a curriculum document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from the file extension. Unknown
// extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// FindCurriculumPath locates the curriculum file for dir (cwd if empty).
// PENSUM_FILE is used as-is when set; otherwise the first non-empty file
// from PreferredNames is returned.
func FindCurriculumPath(dir string) (string, error) {
	if env := os.Getenv(FileEnvVar); env != "" {
		return env, nil
	}

	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	for _, name := range PreferredNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() && info.Size() > 0 {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNotFound, dir, strings.Join(PreferredNames, ", "))
}

// ParseOptions configures ParseCurriculum.
type ParseOptions struct {
	// Strict makes error-severity validation problems fatal. When false every
	// problem is passed to WarningHandler and loading continues.
	Strict bool

	// WarningHandler is called with warning messages.
	// If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)
}

func (o ParseOptions) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// LoadCurriculum reads and validates the curriculum at path.
func LoadCurriculum(path string, opts ParseOptions) (*model.Curriculum, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open curriculum file: %w", err)
	}
	defer file.Close()

	c, err := ParseCurriculum(file, FormatFromPath(path), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCurriculum decodes a curriculum document, normalizes it and runs
// validation according to opts.
func ParseCurriculum(r io.Reader, format Format, opts ParseOptions) (*model.Curriculum, error) {
	start := time.Now()
	defer func() {
		metrics.CurriculumLoad.Record(time.Since(start))
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading curriculum: %w", err)
	}
	data = stripBOM(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, model.ErrEmptyCurriculum
	}

	var c model.Curriculum
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("malformed YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("malformed JSON: %w", err)
		}
	}
	c.Normalize()
	debug.Log("parsed curriculum %q: %d subjects, %d semesters", c.Career.Name, len(c.Subjects), c.Career.TotalSemesters)

	warn := opts.warn()
	if len(c.Subjects) == 0 {
		if opts.Strict {
			return nil, model.ErrEmptyCurriculum
		}
		warn(model.ErrEmptyCurriculum.Error())
	}

	if err := c.Validate(); err != nil {
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		if opts.Strict && len(verr.Errors()) > 0 {
			return nil, &model.ValidationError{Problems: verr.Errors()}
		}
		for _, p := range verr.Problems {
			warn(p.String())
		}
	}

	return &c, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
