package notify

import (
	"context"

	slackgo "github.com/slack-go/slack"

	"github.com/toolgate/toolgate/internal/schema"
)

// SlackNotifier posts mutation alerts to one Slack channel.
type SlackNotifier struct {
	client  *slackgo.Client
	channel string
}

var _ schema.Notifier = (*SlackNotifier)(nil)

// NewSlackNotifier builds a notifier from a bot token and channel ID.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slackgo.New(token),
		channel: channel,
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Notify(ctx context.Context, e schema.AuditEntry) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slackgo.MsgOptionText(formatEntry(e), false))
	return err
}
