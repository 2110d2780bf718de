package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"novel_ai/ending"
	"novel_ai/story"
)

// projectNamespace scopes derived project ids.
var projectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("novel_ai/project"))

type projectFile struct {
	story.Project `yaml:",inline"`
	EndingPolicy  ending.Policy     `yaml:"ending_policy"`
	Epilogues     []ending.Epilogue `yaml:"epilogues"`
}

// Definition is a loaded project file.
type Definition struct {
	Project story.Project
	Policy  ending.Policy
	Catalog *ending.Catalog
}

// LoadProject reads and validates the project file at path.
func LoadProject(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read project file: %w", err)
	}
	return ParseProject(data)
}

// ParseProject decodes a project definition. A missing id is derived from the
// title so the same project keeps its cache and saves across restarts.
func ParseProject(data []byte) (Definition, error) {
	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return Definition{}, fmt.Errorf("decode project file: %w", err)
	}

	if strings.TrimSpace(pf.ID) == "" && strings.TrimSpace(pf.Title) != "" {
		pf.ID = uuid.NewSHA1(projectNamespace, []byte(pf.Title)).String()
	}
	errs := []error{pf.Project.Validate()}
	for i, e := range pf.Epilogues {
		switch e.Kind {
		case ending.KindTrue, ending.KindValue, ending.KindNormal:
		default:
			errs = append(errs, fmt.Errorf("epilogue %d has unknown kind %q", i, e.Kind))
		}
		if len(e.Lines) == 0 {
			errs = append(errs, fmt.Errorf("epilogue %d %q has no lines", i, e.Title))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Definition{}, fmt.Errorf("invalid project: %w", err)
	}

	return Definition{
		Project: pf.Project,
		Policy:  pf.EndingPolicy.WithDefaults(),
		Catalog: ending.NewCatalog(pf.Epilogues),
	}, nil
}
