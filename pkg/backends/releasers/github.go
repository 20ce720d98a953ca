package releasers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/backends/httpapi"
)

type githubReleaser struct{}

type githubRelease struct {
	ID      int64         `json:"id"`
	HTMLURL string        `json:"html_url"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (g *githubReleaser) Name() string { return GitHub }

func (g *githubReleaser) Validate(d api.Descriptor) error {
	return backend.RequireFields(GitHub, d.Missing("owner", "repo", "token"))
}

func (g *githubReleaser) ReleaseURL(rc *backend.Context, d api.Descriptor) string {
	host := d.StringOr("host", "github.com")
	return fmt.Sprintf("https://%s/%s/%s/releases/tag/%s", host, d.String("owner"), d.String("repo"), rc.Tag)
}

func (g *githubReleaser) Execute(ctx context.Context, rc *backend.Context, d api.Descriptor) error {
	r, err := buildRelease(rc, d)
	if err != nil {
		return err
	}
	if rc.DryRun {
		logDryRun(rc, GitHub, r)
		return nil
	}

	log := rc.Log(backend.Releaser, GitHub)
	c := httpapi.New(d.StringOr("apiUrl", "https://api.github.com"), http.Header{
		"Authorization":        {"Bearer " + d.String("token")},
		"X-Github-Api-Version": {"2022-11-28"},
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

	var existing githubRelease
	err = c.JSON(ctx, http.MethodGet, repoPath+"/releases/tags/"+url.PathEscape(r.Tag), nil, &existing)
	var rel githubRelease
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

	uploads := httpapi.New(d.StringOr("uploadUrl", "https://uploads.github.com"), c.Header)
	for _, a := range rc.Artifacts {
		name := path.Base(a.Name)
		for _, old := range rel.Assets {
			if old.Name == name {
				if err := c.JSON(ctx, http.MethodDelete, fmt.Sprintf("%s/releases/assets/%d", repoPath, old.ID), nil, nil); err != nil {
					return fmt.Errorf("replacing asset %s: %w", name, err)
				}
			}
		}
		target := fmt.Sprintf("%s/releases/%d/assets?name=%s", repoPath, rel.ID, url.QueryEscape(name))
		if err := uploads.UploadFile(ctx, http.MethodPost, target, a.Path, nil); err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}
		log.Info("artifact uploaded", "artifact", name)
	}

	return nil
}

var _ backend.Linker = (*githubReleaser)(nil)
