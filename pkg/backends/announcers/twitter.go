package announcers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/backends/httpapi"
)

const tweetLimit = 280

// twitterAnnouncer posts through the v2 API with an OAuth 2.0 user token.
type twitterAnnouncer struct{}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (t *twitterAnnouncer) Name() string { return Twitter }

func (t *twitterAnnouncer) Validate(d api.Descriptor) error {
	return backend.RequireFields(Twitter, d.Missing("accessToken"))
}

func (t *twitterAnnouncer) Execute(ctx context.Context, rc *backend.Context, d api.Descriptor) error {
	msg, err := message(rc, d, tweetLimit)
	if err != nil {
		return err
	}
	log := rc.Log(backend.Announcer, Twitter)
	log.Debug("twitter client ready", "dryRun", rc.DryRun)
	if rc.DryRun {
		logDryRun(rc, Twitter, msg)
		return nil
	}

	c := httpapi.New(d.StringOr("apiUrl", "https://api.twitter.com"), http.Header{
		"Authorization": {"Bearer " + d.String("accessToken")},
	})
	var resp tweetResponse
	if err := c.JSON(ctx, http.MethodPost, "2/tweets", map[string]any{"text": msg}, &resp); err != nil {
		return fmt.Errorf("posting tweet: %w", err)
	}
	log.Info("tweet posted", "id", resp.Data.ID)
	return nil
}
