package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acheong08/neuromap/internal/generate"
	"github.com/acheong08/neuromap/internal/hierarchy"
	"github.com/acheong08/neuromap/pkg/models"
)

// RoadmapFileName is the file looked up when no path is given
const RoadmapFileName = "roadmap.json"

// ParseRoadmapFile reads and validates a saved roadmap
func ParseRoadmapFile(path string) (*models.RoadmapData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roadmap: %w", err)
	}

	roadmap, err := generate.DecodeRoadmap(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return roadmap, nil
}

// LoadTree parses a roadmap file and builds its tree
func LoadTree(path string) (*hierarchy.Node, hierarchy.Stats, error) {
	roadmap, err := ParseRoadmapFile(path)
	if err != nil {
		return nil, hierarchy.Stats{}, err
	}
	return hierarchy.BuildWithStats(roadmap.Nodes, hierarchy.RootID)
}

// ValidateRoadmapFile checks that a roadmap file exists and forms a single tree
func ValidateRoadmapFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("roadmap not found at %s", path)
	}

	_, _, err := LoadTree(path)
	return err
}

// FindRoadmapFile searches for roadmap.json in the given directory
func FindRoadmapFile(dir string) (string, error) {
	path := filepath.Join(dir, RoadmapFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s not found in %s", RoadmapFileName, dir)
	}
	return path, nil
}

// ResolveRoadmapFile returns path, or roadmap.json in the working directory when path is empty
func ResolveRoadmapFile(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return FindRoadmapFile(cwd)
}
