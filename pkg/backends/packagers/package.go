// Package packagers renders package-manager definitions for the release
// artifacts. Output goes to <output>/<packager>/ and nothing is written in
// dry-run mode.
package packagers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/artifacts"
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/render"
)

const (
	Homebrew   = "homebrew"
	Chocolatey = "chocolatey"
	Snap       = "snap"
	MacPorts   = "macports"
)

// DefaultOutputDir is used when the run has no output directory.
const DefaultOutputDir = "dist"

// GitHub and Gitea tag pages and download links differ only in this segment.
const defaultURLTemplate = `{{ .ReleaseURL | replace "/releases/tag/" "/releases/download/" }}/{{ .ArtifactName }}`

// Register adds every packager to reg.
func Register(reg *backend.Registry) {
	reg.MustRegister(backend.Packager, Homebrew, func() backend.Backend { return &homebrewPackager{} })
	reg.MustRegister(backend.Packager, Chocolatey, func() backend.Backend { return &chocolateyPackager{} })
	reg.MustRegister(backend.Packager, Snap, func() backend.Backend { return &snapPackager{} })
	reg.MustRegister(backend.Packager, MacPorts, func() backend.Backend { return &macportsPackager{} })
}

// file is one generated file, relative to the packager's output directory.
type file struct {
	Path string
	Data []byte
}

// input is what every package definition is rendered from.
type input struct {
	data     map[string]any
	artifact artifacts.Artifact
	url      string
}

func project(rc *backend.Context) api.Project {
	if rc.Config == nil {
		return api.Project{Name: rc.ProjectName, Version: rc.Version}
	}
	return rc.Config.Project
}

// prepare selects the artifact and builds the template data shared by every
// packager.
func prepare(rc *backend.Context, d api.Descriptor, defaultPattern string) (*input, error) {
	pattern := d.StringOr("artifact", defaultPattern)
	a, ok := artifacts.Find(rc.Artifacts, pattern)
	if !ok {
		return nil, fmt.Errorf("no artifact matches %q", pattern)
	}

	p := project(rc)
	data := rc.TemplateData()
	data["Artifact"] = a
	data["ArtifactName"] = filepath.Base(a.Name)
	data["SHA256"] = a.SHA256
	data["Size"] = a.Size
	data["Binary"] = d.StringOr("binary", rc.ProjectName)
	data["Description"] = d.StringOr("description", firstNonEmpty(p.Description, rc.ProjectName))
	data["Homepage"] = d.StringOr("homepage", p.Homepage)
	data["License"] = d.StringOr("license", p.License)
	data["Authors"] = firstNonEmpty(strings.Join(d.StringSlice("authors"), ", "), strings.Join(p.Authors, ", "))
	data["Config"] = d.Config

	url, err := render.String(d.Name+".url", d.StringOr("urlTemplate", defaultURLTemplate), data)
	if err != nil {
		return nil, fmt.Errorf("rendering download url: %w", err)
	}
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return nil, &backend.ConfigError{Backend: d.Name, Field: "urlTemplate", Msg: fmt.Sprintf("download url %q is not absolute; set urlTemplate when no release link is available", url)}
	}
	data["URL"] = url

	return &input{data: data, artifact: a, url: url}, nil
}

func renderFile(name, path, tmpl string, data map[string]any) (file, error) {
	out, err := render.String(name, tmpl, data)
	if err != nil {
		return file{}, fmt.Errorf("rendering %s: %w", path, err)
	}
	return file{Path: path, Data: []byte(out)}, nil
}

// emit writes files below the packager's output directory, or only logs them
// in dry-run mode.
func emit(rc *backend.Context, name string, files []file) error {
	outDir := rc.OutputDir
	if outDir == "" {
		outDir = DefaultOutputDir
	}
	outDir = filepath.Join(outDir, name)
	log := rc.Log(backend.Packager, name)

	for _, f := range files {
		target := filepath.Join(outDir, filepath.FromSlash(f.Path))
		if rc.DryRun {
			log.Info("dry run: skipping package file", "output", target, "bytes", len(f.Data))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return fmt.Errorf("creating parent directories: %w", err)
		}
		if err := os.WriteFile(target, f.Data, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		log.Info("package file written", "output", target)
	}
	return nil
}

// className turns a project name into a Ruby/Tcl-friendly identifier:
// "my-tool_cli" becomes "MyToolCli".
func className(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
