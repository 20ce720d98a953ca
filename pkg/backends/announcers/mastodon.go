package announcers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/backends/httpapi"
)

const tootLimit = 500

type mastodonAnnouncer struct{}

type statusResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (m *mastodonAnnouncer) Name() string { return Mastodon }

func (m *mastodonAnnouncer) Validate(d api.Descriptor) error {
	if err := backend.RequireFields(Mastodon, d.Missing("host", "accessToken")); err != nil {
		return err
	}
	if u, err := url.Parse(d.String("host")); err != nil || u.Scheme == "" || u.Host == "" {
		return &backend.ConfigError{Backend: Mastodon, Field: "host", Msg: "must be an absolute URL"}
	}
	switch v := d.StringOr("visibility", "public"); v {
	case "public", "unlisted", "private", "direct":
	default:
		return &backend.ConfigError{Backend: Mastodon, Field: "visibility", Msg: fmt.Sprintf("unknown visibility %q", v)}
	}
	return nil
}

func (m *mastodonAnnouncer) Execute(ctx context.Context, rc *backend.Context, d api.Descriptor) error {
	msg, err := message(rc, d, d.Int("limit", tootLimit))
	if err != nil {
		return err
	}
	if rc.DryRun {
		logDryRun(rc, Mastodon, msg)
		return nil
	}

	c := httpapi.New(d.String("host"), http.Header{
		"Authorization": {"Bearer " + d.String("accessToken")},
	})
	payload := map[string]any{
		"status":     msg,
		"visibility": d.StringOr("visibility", "public"),
	}
	var resp statusResponse
	if err := c.JSON(ctx, http.MethodPost, "api/v1/statuses", payload, &resp); err != nil {
		return fmt.Errorf("posting status: %w", err)
	}
	rc.Log(backend.Announcer, Mastodon).Info("status posted", "url", resp.URL)
	return nil
}
