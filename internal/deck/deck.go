// Package deck loads YAML deck files and renders their cards. A Collection is
// the content store the review engine reads question and answer markup from.
package deck

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind is the kind of a note type.
type Kind string

const (
	KindStandard Kind = "standard"
	KindCloze    Kind = "cloze"
)

// FieldDef declares a note field and the font used to type into it.
type FieldDef struct {
	Name string `yaml:"name"`
	Font string `yaml:"font,omitempty"`
	Size int    `yaml:"size,omitempty"`
}

// Template is one card template of a note type.
type Template struct {
	Name  string `yaml:"name"`
	Front string `yaml:"front"`
	Back  string `yaml:"back"`
}

// NoteType describes the fields and card templates notes are built from.
type NoteType struct {
	Name      string     `yaml:"name"`
	Kind      Kind       `yaml:"kind,omitempty"`
	CSS       string     `yaml:"css,omitempty"`
	Fields    []FieldDef `yaml:"fields"`
	Templates []Template `yaml:"templates"`
}

func (nt *NoteType) field(name string) (FieldDef, bool) {
	for _, f := range nt.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Note is one fact with its field values.
type Note struct {
	ID     int64             `yaml:"id,omitempty"`
	Type   string            `yaml:"type"`
	Fields map[string]string `yaml:"fields"`
	Tags   []string          `yaml:"tags,omitempty"`
}

// Options are the per-deck review options.
type Options struct {
	Autoplay       bool          `yaml:"autoplay"`
	ReplayQuestion bool          `yaml:"replay_question"`
	TimeLimit      time.Duration `yaml:"time_limit"`
	ShowTimer      bool          `yaml:"show_timer"`
	NewPerSession  int           `yaml:"new_per_session"`
}

// DefaultOptions returns the options a deck gets for keys it leaves out.
func DefaultOptions() Options {
	return Options{
		Autoplay:       true,
		ReplayQuestion: true,
		TimeLimit:      60 * time.Second,
		ShowTimer:      true,
		NewPerSession:  20,
	}
}

// File is the on-disk deck document.
type File struct {
	Name      string     `yaml:"name"`
	MediaDir  string     `yaml:"media_dir,omitempty"`
	CSS       string     `yaml:"css,omitempty"`
	Options   Options    `yaml:"options"`
	NoteTypes []NoteType `yaml:"note_types"`
	Notes     []Note     `yaml:"notes"`
}

// QueueKind is the scheduler queue a card sits in.
type QueueKind int

const (
	QueueNew QueueKind = iota
	QueueLearning
	QueueReview
)

// DueState is the scheduler-owned part of a card.
type DueState struct {
	Queue    QueueKind
	DueAt    time.Time
	Interval time.Duration
	Reviews  int
}

// Card is one reviewable template of a note.
type Card struct {
	ID        int64
	NoteID    int64
	Ord       int
	Template  string
	TimeLimit time.Duration
	Due       DueState
}

// CardID derives the stable card id for a note template.
func CardID(noteID int64, ord int) int64 {
	return noteID*1000 + int64(ord)
}

// ErrCardNotFound is returned for ids that are not in the collection.
var ErrCardNotFound = errors.New("card not found")

// LoadError reports a deck file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load deck %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var clozeIndexPattern = regexp.MustCompile(`\{\{c(\d+)::`)

// Load reads and validates the deck file at path.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	c, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	c.path = path
	return c, nil
}

// Parse decodes a deck document. Relative media paths resolve against
// baseDir.
func Parse(data []byte, baseDir string) (*Collection, error) {
	f := File{Options: DefaultOptions()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return newCollection(f, baseDir)
}

// Validate checks the document's cross references and returns every problem
// found.
func (f *File) Validate() error {
	var errs []error
	if f.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if f.Options.TimeLimit < 0 {
		errs = append(errs, errors.New("options.time_limit must not be negative"))
	}
	if f.Options.NewPerSession < 0 {
		errs = append(errs, errors.New("options.new_per_session must not be negative"))
	}

	types := make(map[string]*NoteType, len(f.NoteTypes))
	for i := range f.NoteTypes {
		nt := &f.NoteTypes[i]
		if nt.Kind == "" {
			nt.Kind = KindStandard
		}
		prefix := fmt.Sprintf("note_types[%d]", i)
		if nt.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", prefix))
			continue
		}
		if _, dup := types[nt.Name]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate note type %q", prefix, nt.Name))
		}
		types[nt.Name] = nt
		if nt.Kind != KindStandard && nt.Kind != KindCloze {
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", prefix, nt.Kind))
		}
		if len(nt.Fields) == 0 {
			errs = append(errs, fmt.Errorf("%s: at least one field is required", prefix))
		}
		if len(nt.Templates) == 0 {
			errs = append(errs, fmt.Errorf("%s: at least one template is required", prefix))
		}
		if nt.Kind == KindCloze && len(nt.Templates) > 1 {
			errs = append(errs, fmt.Errorf("%s: cloze note types take exactly one template", prefix))
		}
	}

	ids := make(map[int64]bool, len(f.Notes))
	for i := range f.Notes {
		if f.Notes[i].ID != 0 {
			ids[f.Notes[i].ID] = true
		}
	}
	seen := make(map[int64]bool, len(f.Notes))
	next := int64(1)
	for i := range f.Notes {
		n := &f.Notes[i]
		prefix := fmt.Sprintf("notes[%d]", i)
		if n.ID == 0 {
			for ids[next] {
				next++
			}
			n.ID = next
			ids[next] = true
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %d", prefix, n.ID))
		}
		seen[n.ID] = true

		nt, ok := types[n.Type]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown note type %q", prefix, n.Type))
			continue
		}
		names := make([]string, 0, len(n.Fields))
		for name := range n.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, ok := nt.field(name); !ok {
				errs = append(errs, fmt.Errorf("%s: field %q is not defined by %q", prefix, name, nt.Name))
			}
		}
	}
	return errors.Join(errs...)
}

// clozeOrds returns the template ordinals a cloze note produces cards for.
func clozeOrds(n *Note) []int {
	found := make(map[int]bool)
	for _, v := range n.Fields {
		for _, m := range clozeIndexPattern.FindAllStringSubmatch(v, -1) {
			idx, err := strconv.Atoi(m[1])
			if err == nil && idx > 0 {
				found[idx-1] = true
			}
		}
	}
	ords := make([]int, 0, len(found))
	for ord := range found {
		ords = append(ords, ord)
	}
	sort.Ints(ords)
	return ords
}
