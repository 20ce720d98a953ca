// Package announcers posts the release announcement to social channels.
package announcers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/render"
)

const (
	Twitter  = "twitter"
	Mastodon = "mastodon"
	Discord  = "discord"
)

const defaultMessageTemplate = "🚀 {{ .ProjectName }} {{ .Tag }} has been released! {{ .ReleaseURL }}"

// Register adds every announcer to reg.
func Register(reg *backend.Registry) {
	reg.MustRegister(backend.Announcer, Twitter, func() backend.Backend { return &twitterAnnouncer{} })
	reg.MustRegister(backend.Announcer, Mastodon, func() backend.Backend { return &mastodonAnnouncer{} })
	reg.MustRegister(backend.Announcer, Discord, func() backend.Backend { return &discordAnnouncer{} })
}

// message renders the announcement text. limit is the channel's maximum
// length in characters, zero for none.
func message(rc *backend.Context, d api.Descriptor, limit int) (string, error) {
	msg, err := render.String(d.Name+".message", d.StringOr("messageTemplate", defaultMessageTemplate), rc.TemplateData())
	if err != nil {
		return "", fmt.Errorf("rendering message: %w", err)
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", &backend.ConfigError{Backend: d.Name, Field: "messageTemplate", Msg: "renders an empty message"}
	}
	if n := utf8.RuneCountInString(msg); limit > 0 && n > limit {
		return "", fmt.Errorf("message is %d characters, limit is %d", n, limit)
	}
	return msg, nil
}

func logDryRun(rc *backend.Context, name, msg string) {
	rc.Log(backend.Announcer, name).Info("dry run: skipping announcement", "message", msg)
}
