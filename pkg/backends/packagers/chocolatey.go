package packagers

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
)

//go:embed templates/chocolateyinstall.ps1.tmpl
var chocolateyInstallTemplate string

const nuspecNamespace = "http://schemas.microsoft.com/packaging/2015/06/nuspec.xsd"

var packageIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*$`)

type chocolateyPackager struct{}

func (c *chocolateyPackager) Name() string { return Chocolatey }

func (c *chocolateyPackager) Validate(d api.Descriptor) error {
	if id := d.String("packageId"); id != "" && !packageIDPattern.MatchString(id) {
		return &backend.ConfigError{Backend: Chocolatey, Field: "packageId", Msg: fmt.Sprintf("%q must be lowercase letters, digits, dots or dashes", id)}
	}
	return nil
}

func (c *chocolateyPackager) Execute(_ context.Context, rc *backend.Context, d api.Descriptor) error {
	in, err := prepare(rc, d, "*windows*.zip")
	if err != nil {
		return err
	}

	id := d.StringOr("packageId", strings.ToLower(rc.ProjectName))
	in.data["PackageID"] = id

	authors, _ := in.data["Authors"].(string)
	if authors == "" {
		authors = rc.ProjectName
	}
	description, _ := in.data["Description"].(string)
	homepage, _ := in.data["Homepage"].(string)

	metadata := [][2]string{
		{"id", id},
		{"version", rc.Version},
		{"title", d.StringOr("title", rc.ProjectName)},
		{"authors", authors},
		{"projectUrl", homepage},
		{"licenseUrl", d.String("licenseUrl")},
		{"tags", strings.Join(d.StringSlice("tags"), " ")},
		{"summary", description},
		{"description", description},
		{"releaseNotes", rc.ReleaseURL},
	}
	body, err := nuspec(metadata)
	if err != nil {
		return err
	}

	install, err := renderFile(Chocolatey, "tools/chocolateyinstall.ps1", chocolateyInstallTemplate, in.data)
	if err != nil {
		return err
	}

	return emit(rc, Chocolatey, []file{
		{Path: id + ".nuspec", Data: body},
		install,
	})
}

// nuspec builds the package manifest. Optional elements with empty values are
// left out; id, version, authors and description are required by NuGet.
func nuspec(metadata [][2]string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", nuspecNamespace)

	md := pkg.CreateElement("metadata")
	for _, kv := range metadata {
		if kv[1] == "" {
			continue
		}
		md.CreateElement(kv[0]).SetText(kv[1])
	}

	files := pkg.CreateElement("files")
	f := files.CreateElement("file")
	f.CreateAttr("src", `tools\**`)
	f.CreateAttr("target", "tools")

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("encoding nuspec: %w", err)
	}
	return out, nil
}
