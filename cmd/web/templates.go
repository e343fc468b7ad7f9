package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/myrjola/skillplan/internal/contexthelpers"
)

type BaseTemplateData struct {
	CurrentPath string
	// SavedPrograms is the number of programs the visitor has created.
	SavedPrograms int
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CurrentPath:   contexthelpers.CurrentPath(r.Context()),
		SavedPrograms: contexthelpers.SavedProgramCount(r.Context()),
	}
}

// findModuleDir locates the directory containing the go.mod file.
func findModuleDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err = os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			return "", os.ErrNotExist
		}
		dir = parentDir
	}
}

// resolveUIDir returns path if set and otherwise the ui/{name} directory of the module root. The result must be a
// directory.
func resolveUIDir(path string, name string) (string, error) {
	if path == "" {
		modulePath, err := findModuleDir()
		if err != nil {
			return "", fmt.Errorf("find module dir: %w", err)
		}
		path = filepath.Join(modulePath, "ui", name)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%s path not found %s: %w", name, path, err)
	}
	if !stat.IsDir() {
		return "", fmt.Errorf("%s path is not a directory: %s", name, path)
	}
	return path, nil
}

// resolveAndVerifyTemplatePath resolves the template path and verifies it.
//
// If the templatePath is empty, it will attempt to find it from the module root.
func resolveAndVerifyTemplatePath(templatePath string) (string, error) {
	return resolveUIDir(templatePath, "templates")
}
