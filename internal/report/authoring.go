package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Authoring is the static metadata merged into every report.
type Authoring struct {
	Title        string `yaml:"title"`
	Organization string `yaml:"organization"`
	Author       Author `yaml:"author"`
	Notes        string `yaml:"notes"`
}

type Author struct {
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Affiliation string `yaml:"affiliation"`
}

func DefaultAuthoring() Authoring {
	return Authoring{Title: "Genome Report"}
}

// LoadAuthoring reads a YAML authoring file; unknown keys are rejected.
// An empty path yields DefaultAuthoring.
func LoadAuthoring(path string) (Authoring, error) {
	a := DefaultAuthoring()
	if strings.TrimSpace(path) == "" {
		return a, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Authoring{}, fmt.Errorf("read authoring file failed: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil && !errors.Is(err, io.EOF) {
		return Authoring{}, fmt.Errorf("parse authoring file failed: %w", err)
	}
	if strings.TrimSpace(a.Title) == "" {
		a.Title = DefaultAuthoring().Title
	}
	return a, nil
}
