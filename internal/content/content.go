// Package content loads the portfolio data the shell prints and keeps it
// current while the server runs.
package content

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"pkt.systems/termfolio/schema"
)

const (
	ExperienceFile = "experience.json"
	ProjectsFile   = "projects.json"
	LinksFile      = "links.json"
)

//go:embed sample/*.json
var sampleFiles embed.FS

// Sample returns a filesystem holding the bundled example content.
func Sample() fs.FS {
	sub, err := fs.Sub(sampleFiles, "sample")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load reads the three content files from dir. An empty dir loads the
// bundled sample.
func Load(dir string) (schema.Content, error) {
	if dir == "" {
		return LoadFS(Sample())
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads and normalizes the content files from fsys.
func LoadFS(fsys fs.FS) (schema.Content, error) {
	var c schema.Content
	if err := decodeFile(fsys, ExperienceFile, &c.Experience); err != nil {
		return schema.Content{}, err
	}
	if err := decodeFile(fsys, ProjectsFile, &c.Projects); err != nil {
		return schema.Content{}, err
	}
	if err := decodeFile(fsys, LinksFile, &c.Links); err != nil {
		return schema.Content{}, err
	}
	return schema.NormalizeContent(c), nil
}

func decodeFile(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		if errors.Is(err, schema.ErrInvalidContent) {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		return fmt.Errorf("decode %s: %w: %v", name, schema.ErrInvalidContent, err)
	}
	return nil
}

// Store holds the latest successfully loaded content. Readers never block
// and never see a partial update.
type Store struct {
	dir     string
	current atomic.Pointer[schema.Content]
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// NewStaticStore returns a store that already holds c and never reloads.
func NewStaticStore(c schema.Content) *Store {
	s := &Store{}
	s.current.Store(&c)
	return s
}

func (s *Store) Dir() string {
	return s.dir
}

// Reload reads the content again. On failure the previous snapshot stays.
func (s *Store) Reload() error {
	c, err := Load(s.dir)
	if err != nil {
		return err
	}
	s.current.Store(&c)
	return nil
}

// Snapshot returns the current content and whether any has been loaded.
func (s *Store) Snapshot() (schema.Content, bool) {
	c := s.current.Load()
	if c == nil {
		return schema.Content{}, false
	}
	return *c, true
}

// Get is Snapshot with an error for callers that need one.
func (s *Store) Get() (schema.Content, error) {
	c, ok := s.Snapshot()
	if !ok {
		return schema.Content{}, schema.ErrContentNotLoaded
	}
	return c, nil
}
