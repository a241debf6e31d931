// Package snapshot reads record snapshots from JSON or YAML files.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	repository "github.com/okian/fieldpulse/internal/adapters/repository"
	"github.com/okian/fieldpulse/internal/domain/model"
)

// ErrFormat is returned for files that are neither JSON nor YAML.
var ErrFormat = errors.New("unsupported snapshot format")

// File is the on-disk shape of a snapshot.
type File struct {
	Projects    []model.Project      `json:"projects"`
	Technicians []model.Technician   `json:"technicians"`
	Goals       []model.BusinessGoal `json:"goals"`
}

// Snapshot converts the file into store records.
func (f File) Snapshot() repository.Snapshot {
	return repository.Snapshot{
		Projects:    f.Projects,
		Technicians: f.Technicians,
		Goals:       f.Goals,
	}
}

// Load reads path, choosing the decoder by extension.
func Load(path string) (File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return File{}, fmt.Errorf("%w: %s", ErrFormat, path)
	}
}

func loadJSON(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(raw)
}

// loadYAML parses with koanf and re-encodes the tree as JSON so both formats
// share the record json tags.
func loadYAML(path string) (File, error) {
	k := koanf.New("::")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return File{}, fmt.Errorf("read snapshot: %w", err)
	}
	raw, err := json.Marshal(k.Raw())
	if err != nil {
		return File{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return Decode(raw)
}

// Decode parses a JSON snapshot.
func Decode(raw []byte) (File, error) {
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return f, nil
}
