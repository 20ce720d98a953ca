package releasers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/backends/httpapi"
)

type gitlabReleaser struct{}

type gitlabUpload struct {
	URL      string `json:"url"`
	FullPath string `json:"full_path"`
}

func (g *gitlabReleaser) Name() string { return GitLab }

func (g *gitlabReleaser) Validate(d api.Descriptor) error {
	if err := backend.RequireFields(GitLab, d.Missing("token")); err != nil {
		return err
	}
	if !d.Has("projectId") && len(d.Missing("owner", "repo")) > 0 {
		return &backend.ConfigError{Backend: GitLab, Field: "projectId", Msg: "set projectId or both owner and repo"}
	}
	return nil
}

// project returns the URL-encoded project identifier.
func (g *gitlabReleaser) project(d api.Descriptor) string {
	if id := d.String("projectId"); id != "" {
		return url.PathEscape(id)
	}
	return url.PathEscape(d.String("owner") + "/" + d.String("repo"))
}

func (g *gitlabReleaser) ReleaseURL(rc *backend.Context, d api.Descriptor) string {
	if d.Has("projectId") && !d.Has("owner") {
		return ""
	}
	host := d.StringOr("host", "gitlab.com")
	return fmt.Sprintf("https://%s/%s/%s/-/releases/%s", host, d.String("owner"), d.String("repo"), rc.Tag)
}

func (g *gitlabReleaser) Execute(ctx context.Context, rc *backend.Context, d api.Descriptor) error {
	r, err := buildRelease(rc, d)
	if err != nil {
		return err
	}
	if rc.DryRun {
		logDryRun(rc, GitLab, r)
		return nil
	}

	log := rc.Log(backend.Releaser, GitLab)
	apiURL := d.StringOr("apiUrl", "https://gitlab.com/api/v4")
	c := httpapi.New(apiURL, http.Header{"Private-Token": {d.String("token")}})
	projectPath := "projects/" + g.project(d)
	releasePath := projectPath + "/releases/" + url.PathEscape(r.Tag)

	err = c.JSON(ctx, http.MethodGet, releasePath, nil, nil)
	switch {
	case httpapi.IsNotFound(err):
		payload := map[string]any{
			"tag_name":    r.Tag,
			"name":        r.Name,
			"description": r.Notes,
			"ref":         r.Commitish,
		}
		if err := c.JSON(ctx, http.MethodPost, projectPath+"/releases", payload, nil); err != nil {
			return fmt.Errorf("creating release: %w", err)
		}
		log.Info("release created", "tag", r.Tag)
	case err != nil:
		return fmt.Errorf("looking up release %s: %w", r.Tag, err)
	default:
		payload := map[string]any{"name": r.Name, "description": r.Notes}
		if err := c.JSON(ctx, http.MethodPut, releasePath, payload, nil); err != nil {
			return fmt.Errorf("updating release: %w", err)
		}
		log.Info("release updated", "tag", r.Tag)
	}

	// uploads are project-relative; links need the web host
	webBase := strings.TrimSuffix(strings.TrimRight(apiURL, "/"), "/api/v4")
	for _, a := range rc.Artifacts {
		name := path.Base(a.Name)
		var up gitlabUpload
		if err := c.UploadMultipart(ctx, c.URL(projectPath+"/uploads"), "file", a.Path, &up); err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}
		link := map[string]any{
			"name":      name,
			"url":       webBase + up.FullPath,
			"link_type": "package",
		}
		if err := c.JSON(ctx, http.MethodPost, releasePath+"/assets/links", link, nil); err != nil {
			return fmt.Errorf("linking %s: %w", name, err)
		}
		log.Info("artifact uploaded", "artifact", name)
	}

	return nil
}

var _ backend.Linker = (*gitlabReleaser)(nil)
