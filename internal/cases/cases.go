package cases

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mini-maxit/taucheck/pkg/constants"
	"github.com/mini-maxit/taucheck/pkg/errors"
)

// Case is a single test scenario. OutputPath is empty when no output
// directory is configured.
type Case struct {
	Name       string
	InputPath  string
	OutputPath string
	InputSize  int64
}

// InputPath returns <dir>/<name>.in.
func InputPath(dir, name string) string {
	return filepath.Join(dir, name+constants.InputFileExt)
}

// OutputPath returns <dir>/<name>.out.
func OutputPath(dir, name string) string {
	return filepath.Join(dir, name+constants.OutputFileExt)
}

// New builds a case from its name and the configured directories.
func New(name, inDir, outDir string) Case {
	c := Case{
		Name:      name,
		InputPath: InputPath(inDir, name),
	}
	if outDir != "" {
		c.OutputPath = OutputPath(outDir, name)
	}
	return c
}

// Discover lists every *.in file directly inside inDir. The returned slice is
// in directory order; callers apply an ordering strategy.
func Discover(inDir, outDir string) ([]Case, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read test directory %s: %w", inDir, err)
	}

	found := make([]Case, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), constants.InputFileExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), constants.InputFileExt)
		if name == "" {
			continue
		}

		info, err := os.Stat(filepath.Join(inDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", errors.ErrInputFile, entry.Name(), err)
		}

		c := New(name, inDir, outDir)
		c.InputSize = info.Size()
		found = append(found, c)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w in %s", errors.ErrNoCases, inDir)
	}

	return found, nil
}

// Names returns the case names in the same order.
func Names(cs []Case) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}
