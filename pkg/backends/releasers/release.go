// Package releasers publishes the release on a source-hosting service.
// Exactly one of them is enabled per run.
package releasers

import (
	"fmt"
	"strings"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/render"
)

const (
	GitHub = "github"
	GitLab = "gitlab"
	Gitea  = "gitea"
)

const (
	defaultNameTemplate  = "{{ .Tag }}"
	defaultNotesTemplate = `{{ .ProjectName }} {{ .Tag }}
{{- if .Artifacts }}

| Artifact | SHA-256 |
| --- | --- |
{{- range .Artifacts }}
| {{ .Name }} | {{ .SHA256 }} |
{{- end }}
{{- end }}
`
)

// Register adds every releaser to reg.
func Register(reg *backend.Registry) {
	reg.MustRegister(backend.Releaser, GitHub, func() backend.Backend { return &githubReleaser{} })
	reg.MustRegister(backend.Releaser, GitLab, func() backend.Backend { return &gitlabReleaser{} })
	reg.MustRegister(backend.Releaser, Gitea, func() backend.Backend { return &giteaReleaser{} })
}

// release is the host-neutral content of a release.
type release struct {
	Tag        string
	Name       string
	Notes      string
	Draft      bool
	Prerelease bool
	Commitish  string
}

func buildRelease(rc *backend.Context, d api.Descriptor) (release, error) {
	data := rc.TemplateData()

	name, err := render.String(d.Name+".name", d.StringOr("nameTemplate", defaultNameTemplate), data)
	if err != nil {
		return release{}, fmt.Errorf("rendering release name: %w", err)
	}
	notes, err := render.String(d.Name+".notes", d.StringOr("notesTemplate", defaultNotesTemplate), data)
	if err != nil {
		return release{}, fmt.Errorf("rendering release notes: %w", err)
	}

	prerelease := rc.Prerelease
	if _, ok := d.Config["prerelease"]; ok {
		prerelease = d.Bool("prerelease")
	}

	return release{
		Tag:        rc.Tag,
		Name:       strings.TrimSpace(name),
		Notes:      notes,
		Draft:      d.Bool("draft"),
		Prerelease: prerelease,
		Commitish:  d.StringOr("commitish", "main"),
	}, nil
}

func logDryRun(rc *backend.Context, name string, r release) {
	log := rc.Log(backend.Releaser, name)
	log.Info("dry run: skipping release publication", "tag", r.Tag, "name", r.Name, "draft", r.Draft, "prerelease", r.Prerelease)
	for _, a := range rc.Artifacts {
		log.Info("dry run: skipping artifact upload", "artifact", a.Name, "size", a.Size)
	}
}
