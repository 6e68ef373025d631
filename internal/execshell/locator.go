package execshell

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
)

// PathLookupFunc resolves a program name against the executable search path.
type PathLookupFunc func(programName string) (string, error)

// AbsolutePathFunc converts a path to its absolute form.
type AbsolutePathFunc func(candidatePath string) (string, error)

// Locator resolves program names to absolute executable paths.
// Every call rescans the search path.
type Locator struct {
	lookupPath   PathLookupFunc
	absolutePath AbsolutePathFunc
}

// NewLocator constructs a Locator backed by exec.LookPath.
func NewLocator() *Locator {
	return NewLocatorWithLookup(exec.LookPath, filepath.Abs)
}

// NewLocatorWithLookup constructs a Locator around custom lookup functions.
func NewLocatorWithLookup(lookupPath PathLookupFunc, absolutePath AbsolutePathFunc) *Locator {
	if lookupPath == nil {
		lookupPath = exec.LookPath
	}
	if absolutePath == nil {
		absolutePath = filepath.Abs
	}
	return &Locator{lookupPath: lookupPath, absolutePath: absolutePath}
}

// Locate returns the absolute path of programName.
// A missing program yields ExecutableNotFoundError when failOnMissing is set and an empty path otherwise.
// Any other lookup failure is returned unchanged.
func (locator *Locator) Locate(programName string, failOnMissing bool) (string, error) {
	trimmedProgramName := strings.TrimSpace(programName)
	if len(trimmedProgramName) == 0 {
		return "", ErrProgramNameRequired
	}

	programPath, lookupError := locator.lookupPath(trimmedProgramName)
	if lookupError != nil {
		if errors.Is(lookupError, exec.ErrNotFound) {
			if failOnMissing {
				return "", &ExecutableNotFoundError{ProgramName: trimmedProgramName, Cause: lookupError}
			}
			return "", nil
		}
		return "", lookupError
	}

	if filepath.IsAbs(programPath) {
		return programPath, nil
	}
	return locator.absolutePath(programPath)
}
