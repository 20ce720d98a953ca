package packagers

import (
	"context"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
)

var (
	snapGrades       = []string{"stable", "devel"}
	snapConfinements = []string{"strict", "classic", "devmode"}
)

// snapcraft is the subset of snapcraft.yaml shipyard generates. Field order
// follows the snapcraft documentation.
type snapcraft struct {
	Name        string              `yaml:"name"`
	Base        string              `yaml:"base"`
	Version     string              `yaml:"version"`
	Summary     string              `yaml:"summary"`
	Description string              `yaml:"description"`
	Grade       string              `yaml:"grade"`
	Confinement string              `yaml:"confinement"`
	License     string              `yaml:"license,omitempty"`
	Parts       map[string]snapPart `yaml:"parts"`
	Apps        map[string]snapApp  `yaml:"apps"`
}

type snapPart struct {
	Plugin         string `yaml:"plugin"`
	Source         string `yaml:"source"`
	SourceChecksum string `yaml:"source-checksum"`
}

type snapApp struct {
	Command string   `yaml:"command"`
	Plugs   []string `yaml:"plugs,omitempty"`
}

type snapPackager struct{}

func (s *snapPackager) Name() string { return Snap }

func (s *snapPackager) Validate(d api.Descriptor) error {
	if g := d.String("grade"); g != "" && !slices.Contains(snapGrades, g) {
		return &backend.ConfigError{Backend: Snap, Field: "grade", Msg: fmt.Sprintf("must be one of %v", snapGrades)}
	}
	if c := d.String("confinement"); c != "" && !slices.Contains(snapConfinements, c) {
		return &backend.ConfigError{Backend: Snap, Field: "confinement", Msg: fmt.Sprintf("must be one of %v", snapConfinements)}
	}
	return nil
}

func (s *snapPackager) Execute(_ context.Context, rc *backend.Context, d api.Descriptor) error {
	in, err := prepare(rc, d, "*linux*amd64*.tar.gz")
	if err != nil {
		return err
	}

	grade := "stable"
	if rc.Prerelease {
		grade = "devel"
	}
	description, _ := in.data["Description"].(string)
	license, _ := in.data["License"].(string)
	binary, _ := in.data["Binary"].(string)

	name := d.StringOr("snapName", rc.ProjectName)
	sc := snapcraft{
		Name:        name,
		Base:        d.StringOr("base", "core22"),
		Version:     rc.Version,
		Summary:     d.StringOr("summary", description),
		Description: description,
		Grade:       d.StringOr("grade", grade),
		Confinement: d.StringOr("confinement", "strict"),
		License:     license,
		Parts: map[string]snapPart{
			name: {
				Plugin:         "dump",
				Source:         in.url,
				SourceChecksum: "sha256/" + in.artifact.SHA256,
			},
		},
		Apps: map[string]snapApp{
			name: {
				Command: binary,
				Plugs:   d.StringSlice("plugs"),
			},
		},
	}

	out, err := yaml.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encoding snapcraft.yaml: %w", err)
	}
	return emit(rc, Snap, []file{{Path: "snap/snapcraft.yaml", Data: out}})
}
