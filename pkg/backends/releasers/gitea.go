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

// Gitea is self-hosted, so apiUrl has no default.
type giteaReleaser struct{}

type giteaRelease struct {
	ID      int64        `json:"id"`
	HTMLURL string       `json:"html_url"`
	Assets  []giteaAsset `json:"assets"`
}

type giteaAsset struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (g *giteaReleaser) Name() string { return Gitea }

func (g *giteaReleaser) Validate(d api.Descriptor) error {
	if err := backend.RequireFields(Gitea, d.Missing("apiUrl", "owner", "repo", "token")); err != nil {
		return err
	}
	if u, err := url.Parse(d.String("apiUrl")); err != nil || u.Scheme == "" || u.Host == "" {
		return &backend.ConfigError{Backend: Gitea, Field: "apiUrl", Msg: "must be an absolute URL"}
	}
	return nil
}

func (g *giteaReleaser) ReleaseURL(rc *backend.Context, d api.Descriptor) string {
	base := strings.TrimSuffix(strings.TrimRight(d.String("apiUrl"), "/"), "/api/v1")
	return fmt.Sprintf("%s/%s/%s/releases/tag/%s", base, d.String("owner"), d.String("repo"), rc.Tag)
}

func (g *giteaReleaser) Execute(ctx context.Context, rc *backend.Context, d api.Descriptor) error {
	r, err := buildRelease(rc, d)
	if err != nil {
		return err
	}
	if rc.DryRun {
		logDryRun(rc, Gitea, r)
		return nil
	}

	log := rc.Log(backend.Releaser, Gitea)
	c := httpapi.New(d.String("apiUrl"), http.Header{
		"Authorization": {"token " + d.String("token")},
	})
	repoPath := path.Join("repos", d.String("owner"), d.String("repo"))

	payload := map[string]any{
		"tag_name":         r.Tag,
		"name":             r.Name,
		"body":             r.Notes,
		"draft":            r.Draft,
		"prerelease":       r.Prerelease,
		"target_commitish": r.Commitish,
	}

	var existing, rel giteaRelease
	err = c.JSON(ctx, http.MethodGet, repoPath+"/releases/tags/"+url.PathEscape(r.Tag), nil, &existing)
	switch {
	case httpapi.IsNotFound(err):
		if err := c.JSON(ctx, http.MethodPost, repoPath+"/releases", payload, &rel); err != nil {
			return fmt.Errorf("creating release: %w", err)
		}
		log.Info("release created", "tag", r.Tag, "url", rel.HTMLURL)
	case err != nil:
		return fmt.Errorf("looking up release %s: %w", r.Tag, err)
	default:
		if err := c.JSON(ctx, http.MethodPatch, fmt.Sprintf("%s/releases/%d", repoPath, existing.ID), payload, &rel); err != nil {
			return fmt.Errorf("updating release: %w", err)
		}
		rel.Assets = existing.Assets
		log.Info("release updated", "tag", r.Tag, "url", rel.HTMLURL)
	}

	for _, a := range rc.Artifacts {
		name := path.Base(a.Name)
		for _, old := range rel.Assets {
			if old.Name == name {
				if err := c.JSON(ctx, http.MethodDelete, fmt.Sprintf("%s/releases/%d/assets/%d", repoPath, rel.ID, old.ID), nil, nil); err != nil {
					return fmt.Errorf("replacing asset %s: %w", name, err)
				}
			}
		}
		target := fmt.Sprintf("%s/releases/%d/assets?name=%s", repoPath, rel.ID, url.QueryEscape(name))
		if err := c.UploadMultipart(ctx, target, "attachment", a.Path, nil); err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}
		log.Info("artifact uploaded", "artifact", name)
	}

	return nil
}

var _ backend.Linker = (*giteaReleaser)(nil)
