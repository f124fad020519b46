// Package stimulus loads and persists the 3-D figure pairs presented during
// a rotation experiment. The persisted form is a JSON array with one compact
// record per line so that labeling sessions produce human-diffable rewrites.
package stimulus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotFound indicates the stimulus file does not exist on disk.
	ErrNotFound = errors.New("stimulus file not found")

	// ErrEmptyData indicates the file parsed cleanly but holds zero stimuli.
	ErrEmptyData = errors.New("stimulus file contains no stimuli")
)

// ParseError wraps a JSON decoding failure for a stimulus file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse stimulus file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// GeometryError reports a stimulus whose figure geometry is missing or
// internally inconsistent. It is raised eagerly at load time so a bad record
// fails the session before any trial runs rather than at draw time.
type GeometryError struct {
	StimulusID string
	Field      string
	Detail     string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("stimulus %q: invalid geometry field %q: %s", e.StimulusID, e.Field, e.Detail)
}

// Rotation is the base orientation of a figure pair in degrees.
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Figure holds the renderable geometry of one 3-D figure: an ordered vertex
// list plus edges and faces referencing vertices by index.
type Figure struct {
	Vertices [][]float64 `json:"vertices"`
	Edges    [][]int     `json:"edges"`
	Faces    [][]int     `json:"faces"`
}

// Stimulus is one presented pair of figures. IsMirror is nil until a
// labeling pass annotates whether the pair are reflections of each other.
type Stimulus struct {
	ID          string   `json:"id"`
	FigureLeft  Figure   `json:"figure_left"`
	FigureRight Figure   `json:"figure_right"`
	Rotation    Rotation `json:"rotation"`
	Angle       float64  `json:"angle"`
	IsMirror    *bool    `json:"is_mirror"`
}

// Labeled reports whether the stimulus has a mirror annotation.
func (s *Stimulus) Labeled() bool { return s.IsMirror != nil }

// Validate checks that both figures carry vertices, edges and faces, and
// that every edge and face index points into the vertex list.
func (s *Stimulus) Validate() error {
	if err := validateFigure(s.ID, "figure_left", s.FigureLeft); err != nil {
		return err
	}
	return validateFigure(s.ID, "figure_right", s.FigureRight)
}

func validateFigure(id, field string, f Figure) error {
	if len(f.Vertices) == 0 {
		return &GeometryError{StimulusID: id, Field: field, Detail: "no vertices"}
	}
	if len(f.Edges) == 0 {
		return &GeometryError{StimulusID: id, Field: field, Detail: "no edges"}
	}
	if len(f.Faces) == 0 {
		return &GeometryError{StimulusID: id, Field: field, Detail: "no faces"}
	}
	for i, v := range f.Vertices {
		if len(v) != 3 {
			return &GeometryError{
				StimulusID: id, Field: field,
				Detail: fmt.Sprintf("vertex %d has %d coordinates, want 3", i, len(v)),
			}
		}
	}
	n := len(f.Vertices)
	for i, e := range f.Edges {
		if len(e) != 2 {
			return &GeometryError{
				StimulusID: id, Field: field,
				Detail: fmt.Sprintf("edge %d has %d endpoints, want 2", i, len(e)),
			}
		}
		for _, idx := range e {
			if idx < 0 || idx >= n {
				return &GeometryError{
					StimulusID: id, Field: field,
					Detail: fmt.Sprintf("edge %d references vertex %d (have %d vertices)", i, idx, n),
				}
			}
		}
	}
	for i, face := range f.Faces {
		for _, idx := range face {
			if idx < 0 || idx >= n {
				return &GeometryError{
					StimulusID: id, Field: field,
					Detail: fmt.Sprintf("face %d references vertex %d (have %d vertices)", i, idx, n),
				}
			}
		}
	}
	return nil
}

// Repository owns the canonical stimulus collection on disk. It is not safe
// for concurrent writers; callers must serialise Label/Save externally.
type Repository struct {
	path string
}

// NewRepository returns a repository backed by the JSON file at path.
func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// Path returns the backing file path.
func (r *Repository) Path() string { return r.path }

// Load reads and validates the full stimulus collection.
func (r *Repository) Load() ([]Stimulus, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, r.path)
		}
		return nil, fmt.Errorf("failed to read stimulus file %s: %w", r.path, err)
	}

	var stimuli []Stimulus
	if err := json.Unmarshal(data, &stimuli); err != nil {
		return nil, &ParseError{Path: r.path, Err: err}
	}
	if len(stimuli) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyData, r.path)
	}

	for i := range stimuli {
		if err := stimuli[i].Validate(); err != nil {
			return nil, fmt.Errorf("stimulus %d: %w", i, err)
		}
	}
	return stimuli, nil
}

// Save rewrites the entire collection in order, one compact record per line.
// The rewrite is not atomic: a crash mid-write can corrupt the file. That
// matches the upstream tooling this file format comes from.
func (r *Repository) Save(stimuli []Stimulus) error {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i := range stimuli {
		line, err := marshalCompact(&stimuli[i])
		if err != nil {
			return fmt.Errorf("failed to encode stimulus %d: %w", i, err)
		}
		buf.Write(line)
		if i < len(stimuli)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]")

	if err := os.WriteFile(r.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write stimulus file %s: %w", r.path, err)
	}
	return nil
}

// Label sets the mirror annotation on the stimulus at index, then performs a
// full rewrite of the persisted collection so the file always reflects the
// complete in-memory state.
func (r *Repository) Label(stimuli []Stimulus, index int, isMirror bool) error {
	if index < 0 || index >= len(stimuli) {
		return fmt.Errorf("label index %d out of range (have %d stimuli)", index, len(stimuli))
	}
	stimuli[index].IsMirror = &isMirror
	return r.Save(stimuli)
}

// marshalCompact encodes one stimulus without trailing newline or HTML
// escaping, matching the compact one-record-per-line file layout.
func marshalCompact(s *Stimulus) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
