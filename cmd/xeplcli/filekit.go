package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/parser"
)

// resourceFileKit implements kit.FileKit against the local filesystem,
// searching each of roots in order and, for each, climbing parent
// directories until the resource is found or the filesystem root is
// reached. Grounded on cortex.Config.ResourcePaths (the resource search
// path spec ties to "./resources") and on the teacher's habit of keeping
// I/O collaborators as a single small adapter struct rather than scattering
// os.* calls through the interpreter itself.
type resourceFileKit struct {
	roots []string
}

func newResourceFileKit(roots []string) *resourceFileKit {
	if len(roots) == 0 {
		roots = []string{"./resources"}
	}
	return &resourceFileKit{roots: roots}
}

// Load resolves name to "<name>.xml" under one of k.roots or an ancestor
// of one of k.roots, and parses it.
func (k *resourceFileKit) Load(_ context.Context, name string) (*gene.Gene, error) {
	path, err := k.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading resource %q", name)
	}
	return parser.ParseXML(data)
}

// Save serializes g and writes it to "<name>.xml" under the first root.
func (k *resourceFileKit) Save(_ context.Context, name string, g *gene.Gene) error {
	path := filepath.Join(k.roots[0], name+".xml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating resource directory for %q", name)
	}
	if err := os.WriteFile(path, []byte(g.PrintInto(-1)), 0o644); err != nil {
		return errors.Wrapf(err, "writing resource %q", name)
	}
	return nil
}

func (k *resourceFileKit) resolve(name string) (string, error) {
	fileName := name + ".xml"
	for _, root := range k.roots {
		dir, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		for {
			candidate := filepath.Join(dir, fileName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return "", errors.Errorf("resource %q not found under %v", name, k.roots)
}
