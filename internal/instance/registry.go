package instance

import (
	"os"
	"sort"
	"strings"

	"github.com/moguard/subctl/internal/errors"
)

// Registry answers which instances exist. The set is derived by scanning
// the base directory rather than kept in a separate state file, so the
// filesystem stays the single source of truth.
type Registry struct {
	baseDir string
	prefix  string
}

// NewRegistry returns a registry over the given base directory.
func NewRegistry(baseDir, prefix string) *Registry {
	return &Registry{baseDir: baseDir, prefix: prefix}
}

// Exists reports whether an instance directory exists for name.
func (r *Registry) Exists(name string) (bool, error) {
	info, err := os.Stat(Instance{Name: name, BaseDir: r.baseDir, Prefix: r.prefix}.Dir())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to check instance %s", name)
	}
	return info.IsDir(), nil
}

// Get returns the instance for name, or ErrInstanceNotFound if its
// directory does not exist.
func (r *Registry) Get(name string) (Instance, error) {
	if err := ValidateName(name); err != nil {
		return Instance{}, err
	}
	exists, err := r.Exists(name)
	if err != nil {
		return Instance{}, err
	}
	if !exists {
		return Instance{}, errors.NewNotFoundError("instance", name)
	}
	return Instance{Name: name, BaseDir: r.baseDir, Prefix: r.prefix}, nil
}

// List returns every registered instance in sorted name order. Entries
// that are not directories or do not carry valid instance names are
// ignored; the base directory may hold lock files and other bookkeeping.
func (r *Registry) List() ([]Instance, error) {
	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read base directory %s", r.baseDir)
	}

	var instances []Instance
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if ValidateName(entry.Name()) != nil {
			continue
		}
		instances = append(instances, Instance{
			Name:    entry.Name(),
			BaseDir: r.baseDir,
			Prefix:  r.prefix,
		})
	}
	sort.Slice(instances, func(a, b int) bool {
		return instances[a].Name < instances[b].Name
	})
	return instances, nil
}
