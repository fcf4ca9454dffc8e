// Package loader wraps go/packages to load rule fixture packages with full
// syntax, type and position information.
package loader

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/tools/go/packages"
)

// LoadMode is what the analysis checker needs: syntax and types for the
// fixture and all of its dependencies.
const LoadMode = packages.LoadAllSyntax | packages.NeedModule

var (
	ErrNotFound   = errors.New("package not found")
	ErrNoTypeInfo = errors.New("package has no type information")
)

var baseDir = sync.OnceValue(func() string {
	wd, err := os.Getwd()
	if err != nil {
		if exe, exeErr := os.Executable(); exeErr == nil {
			return filepath.Dir(exe)
		}
		return "."
	}
	return wd
})

// BaseDir returns the directory the process was running in the first time
// BaseDir was called. For go test this is the directory of the package under
// test. The value is computed once and never changes afterwards.
func BaseDir() string {
	return baseDir()
}

// Package is a loaded fixture.
type Package struct {
	Name     string
	Dir      string
	Fset     *token.FileSet
	Packages []*packages.Package
}

// Files returns the absolute paths of the compiled Go files of the fixture.
func (p *Package) Files() []string {
	var files []string
	for _, pkg := range p.Packages {
		files = append(files, pkg.CompiledGoFiles...)
	}
	return files
}

// Load loads the package in filepath.Join(dir, name).
func Load(dir, name string) (*Package, error) {
	pkgDir := filepath.Join(dir, name)
	info, err := os.Stat(pkgDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s in directory %s", ErrNotFound, name, dir)
	}

	cfg := &packages.Config{
		Mode:  LoadMode,
		Dir:   pkgDir,
		Tests: false,
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: %s in directory %s: %w", ErrNotFound, name, dir, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: %s in directory %s", ErrNotFound, name, dir)
	}

	var (
		errs      []string
		typesOnly = true
	)
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e.Error())
			if e.Kind != packages.TypeError {
				typesOnly = false
			}
		}
	})
	if len(errs) > 0 {
		// The sources were found and parsed, only type checking failed.
		kind := ErrNotFound
		if typesOnly {
			kind = ErrNoTypeInfo
		}
		return nil, fmt.Errorf("%w: %s in directory %s has errors:\n  %s",
			kind, name, dir, strings.Join(errs, "\n  "))
	}

	for _, pkg := range pkgs {
		if pkg.Fset == nil || pkg.Types == nil || pkg.TypesInfo == nil || len(pkg.Syntax) == 0 {
			return nil, fmt.Errorf("%w: %s in directory %s", ErrNoTypeInfo, name, dir)
		}
	}

	return &Package{
		Name:     name,
		Dir:      pkgDir,
		Fset:     pkgs[0].Fset,
		Packages: pkgs,
	}, nil
}
