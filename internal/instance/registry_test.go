package instance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/moguard/subctl/internal/errors"
	"github.com/moguard/subctl/internal/testutil"
)

func TestRegistryExists(t *testing.T) {
	baseDir := testutil.SetupBaseDir(t)
	testutil.SetupInstanceDir(t, baseDir, "acme", testutil.EnvContents("acme"))
	reg := NewRegistry(baseDir, "moguard")

	exists, err := reg.Exists("acme")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists(acme) = false, want true")
	}

	exists, err = reg.Exists("ghost")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists(ghost) = true, want false")
	}
}

func TestRegistryGet(t *testing.T) {
	baseDir := testutil.SetupBaseDir(t)
	testutil.SetupInstanceDir(t, baseDir, "acme", testutil.EnvContents("acme"))
	reg := NewRegistry(baseDir, "moguard")

	inst, err := reg.Get("acme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if inst.Name != "acme" || inst.Prefix != "moguard" {
		t.Errorf("Get() = %+v", inst)
	}

	_, err = reg.Get("ghost")
	if !errors.Is(err, errors.ErrInstanceNotFound) {
		t.Errorf("Get(ghost) error = %v, want ErrInstanceNotFound", err)
	}

	_, err = reg.Get("Not A Name")
	if !errors.Is(err, errors.ErrInvalidName) {
		t.Errorf("Get(invalid) error = %v, want ErrInvalidName", err)
	}
}

func TestRegistryListSortedAndFiltered(t *testing.T) {
	baseDir := testutil.SetupBaseDir(t)
	for _, name := range []string{"zeta", "acme", "mid"} {
		testutil.SetupInstanceDir(t, baseDir, name, testutil.EnvContents(name))
	}
	// Bookkeeping entries the scan must skip.
	if err := os.MkdirAll(filepath.Join(baseDir, ".locks"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "subctl.log"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(baseDir, "Not_An_Instance"), 0o755); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(baseDir, "moguard")
	instances, err := reg.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"acme", "mid", "zeta"}
	if len(instances) != len(want) {
		t.Fatalf("List() returned %d instances, want %d", len(instances), len(want))
	}
	for i, inst := range instances {
		if inst.Name != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, inst.Name, want[i])
		}
	}
}

func TestRegistryListMissingBaseDir(t *testing.T) {
	reg := NewRegistry(filepath.Join(t.TempDir(), "missing"), "moguard")
	instances, err := reg.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(instances) != 0 {
		t.Errorf("List() = %d instances, want 0", len(instances))
	}
}
