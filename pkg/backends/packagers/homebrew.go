package packagers

import (
	"context"
	_ "embed"
	"strings"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
)

//go:embed templates/formula.rb.tmpl
var formulaTemplate string

type homebrewPackager struct{}

func (h *homebrewPackager) Name() string { return Homebrew }

func (h *homebrewPackager) Validate(d api.Descriptor) error {
	if name := d.String("formula"); name != "" && name != strings.ToLower(name) {
		return &backend.ConfigError{Backend: Homebrew, Field: "formula", Msg: "must be lowercase"}
	}
	return nil
}

func (h *homebrewPackager) Execute(_ context.Context, rc *backend.Context, d api.Descriptor) error {
	in, err := prepare(rc, d, "*darwin*.tar.gz")
	if err != nil {
		return err
	}

	formula := d.StringOr("formula", strings.ToLower(rc.ProjectName))
	in.data["ClassName"] = className(formula)
	in.data["Dependencies"] = d.StringSlice("dependencies")

	f, err := renderFile(Homebrew, "Formula/"+formula+".rb", d.StringOr("formulaTemplate", formulaTemplate), in.data)
	if err != nil {
		return err
	}
	return emit(rc, Homebrew, []file{f})
}
