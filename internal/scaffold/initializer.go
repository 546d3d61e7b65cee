// Package scaffold writes a starter whirlpool project.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/whirlpool/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Created lists the files Initialize writes, relative to the project dir.
var Created = []string{config.DefaultPath, ".env.example"}

// Initialize writes whirlpool.yml and .env.example into dir.
// If force is true, existing files are overwritten.
func Initialize(dir string, force bool) error {
	if !force {
		if err := CheckExisting(dir); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	for _, file := range files {
		path := filepath.Join(dir, file.Path)
		if force {
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("⚠️  Overwriting existing %s...\n", file.Path)
			}
		}
		if err := os.WriteFile(path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return validateCreatedFiles(dir)
}

func getTemplateFiles() ([]FileInfo, error) {
	sources := map[string]string{
		config.DefaultPath: "templates/whirlpool.yml.tmpl",
		".env.example":     "templates/env.tmpl",
	}

	files := make([]FileInfo, 0, len(Created))
	for _, path := range Created {
		content, err := templatesFS.ReadFile(sources[path])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", path, err)
		}
		files = append(files, FileInfo{Path: path, Content: content, Permissions: 0644})
	}
	return files, nil
}

// validateCreatedFiles loads the written configuration through the same
// path serve uses.
func validateCreatedFiles(dir string) error {
	if _, err := config.Load(filepath.Join(dir, config.DefaultPath)); err != nil {
		return fmt.Errorf("created %s is invalid: %w", config.DefaultPath, err)
	}
	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized whirlpool project!")
	fmt.Println("\nCreated:")
	for _, path := range Created {
		fmt.Printf("  ✓ %s\n", path)
	}
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add '.env' to your .gitignore file")
	fmt.Println("  2. Enable more thinkers in whirlpool.yml and put their keys in .env")
	fmt.Println("  3. Run 'whirlpool serve' and connect to ws://localhost:1234/ws")
}
