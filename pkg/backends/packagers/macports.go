package packagers

import (
	"context"
	_ "embed"
	"path"
	"strings"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
)

//go:embed templates/Portfile.tmpl
var portfileTemplate string

var archiveSuffixes = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tgz", ".zip"}

type macportsPackager struct{}

func (m *macportsPackager) Name() string { return MacPorts }

func (m *macportsPackager) Validate(d api.Descriptor) error {
	return backend.RequireFields(MacPorts, d.Missing("maintainers"))
}

func (m *macportsPackager) Execute(_ context.Context, rc *backend.Context, d api.Descriptor) error {
	in, err := prepare(rc, d, "*darwin*.tar.gz")
	if err != nil {
		return err
	}

	port := d.StringOr("portName", strings.ToLower(rc.ProjectName))
	categories := d.StringSlice("categories")
	if len(categories) == 0 {
		categories = []string{"devel"}
	}

	in.data["PortName"] = port
	in.data["Revision"] = d.Int("revision", 0)
	in.data["Categories"] = strings.Join(categories, " ")
	in.data["Maintainers"] = strings.Join(d.StringSlice("maintainers"), " ")
	in.data["MasterSite"] = strings.TrimSuffix(in.url, path.Base(in.url))
	in.data["DistName"] = distName(path.Base(in.url))

	f, err := renderFile(MacPorts, port+"/Portfile", portfileTemplate, in.data)
	if err != nil {
		return err
	}
	return emit(rc, MacPorts, []file{f})
}

// distName strips the archive extension; MacPorts appends extract.suffix itself.
func distName(file string) string {
	for _, s := range archiveSuffixes {
		if strings.HasSuffix(file, s) {
			return strings.TrimSuffix(file, s)
		}
	}
	return file
}
