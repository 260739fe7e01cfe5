package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
)

// Script actions.
const (
	actionPlace   = "place"
	actionMove    = "move"
	actionRelease = "release"
	actionSave    = "save"
)

var errInvalidScript = errors.New("invalid script")

// Script is a recorded editing session: objects dropped, dragged, released and saved, in order.
type Script struct {
	Environment int    `yaml:"environment,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is one user action. Name refers to an object placed by an earlier step.
type Step struct {
	Action       string   `yaml:"action"`
	Name         string   `yaml:"name,omitempty"`
	Prefab       int      `yaml:"prefab,omitempty"`
	X            float64  `yaml:"x,omitempty"`
	Y            float64  `yaml:"y,omitempty"`
	Rotation     float64  `yaml:"rotation,omitempty"`
	ScaleX       *float64 `yaml:"scale_x,omitempty"`
	ScaleY       *float64 `yaml:"scale_y,omitempty"`
	SortingLayer int      `yaml:"sorting_layer,omitempty"`
}

// Transform returns the transform the step moves or drops its object to. Missing scales are 1.
func (s Step) Transform() object.Transform {
	t := object.Transform{
		PositionX:    s.X,
		PositionY:    s.Y,
		ScaleX:       1,
		ScaleY:       1,
		RotationZ:    s.Rotation,
		SortingLayer: s.SortingLayer,
	}
	if s.ScaleX != nil {
		t.ScaleX = *s.ScaleX
	}
	if s.ScaleY != nil {
		t.ScaleY = *s.ScaleY
	}
	return t
}

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseScript(data)
}

func parseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidScript, err)
	}

	placed := make(map[string]bool)
	for i, step := range script.Steps {
		switch step.Action {
		case actionPlace:
			if step.Name == "" || step.Prefab <= 0 {
				return nil, fmt.Errorf("%w: step %d: place needs a name and a positive prefab", errInvalidScript, i+1)
			}
			if placed[step.Name] {
				return nil, fmt.Errorf("%w: step %d: %q placed twice", errInvalidScript, i+1, step.Name)
			}
			placed[step.Name] = true
		case actionMove, actionRelease:
			if !placed[step.Name] {
				return nil, fmt.Errorf("%w: step %d: %s of unknown object %q", errInvalidScript, i+1, step.Action, step.Name)
			}
		case actionSave:
		default:
			return nil, fmt.Errorf("%w: step %d: unknown action %q", errInvalidScript, i+1, step.Action)
		}
	}
	return &script, nil
}
