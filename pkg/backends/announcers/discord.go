package announcers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/backends/httpapi"
)

const discordLimit = 2000

type discordAnnouncer struct{}

func (a *discordAnnouncer) Name() string { return Discord }

func (a *discordAnnouncer) Validate(d api.Descriptor) error {
	if err := backend.RequireFields(Discord, d.Missing("webhookUrl")); err != nil {
		return err
	}
	if u := d.String("webhookUrl"); !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
		return &backend.ConfigError{Backend: Discord, Field: "webhookUrl", Msg: "must be an absolute URL"}
	}
	return nil
}

func (a *discordAnnouncer) Execute(ctx context.Context, rc *backend.Context, d api.Descriptor) error {
	msg, err := message(rc, d, discordLimit)
	if err != nil {
		return err
	}
	if rc.DryRun {
		logDryRun(rc, Discord, msg)
		return nil
	}

	payload := map[string]any{"content": msg}
	if u := d.String("username"); u != "" {
		payload["username"] = u
	}
	// the webhook URL embeds its token, so it never appears in errors
	c := httpapi.New("", nil)
	c.Label = "discord webhook"
	if err := c.JSON(ctx, http.MethodPost, d.String("webhookUrl"), payload, nil); err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	rc.Log(backend.Announcer, Discord).Info("webhook message posted")
	return nil
}
