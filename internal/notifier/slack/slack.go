package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/rank"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	DeleteMessageContext(ctx context.Context, channel, messageTimestamp string) (string, string, error)
	OpenConversationContext(ctx context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error)
	CreateConversationContext(ctx context.Context, params slack.CreateConversationParams) (*slack.Channel, error)
	InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error)
	ArchiveConversationContext(ctx context.Context, channelID string) error
	GetUsersInConversationContext(ctx context.Context, params *slack.GetUsersInConversationParameters) ([]string, string, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
}

var _ notifier.Notifier = &Notifier{}

const apiTimeout = 10 * time.Second

// Notifier implements the notifier interface on top of the Slack API. The
// main channel hosts the queue-status message; matches each get their own
// private channel.
type Notifier struct {
	api       slackClient
	channelID string
	capacity  int
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, capacity int, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		capacity:  capacity,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, capacity int, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		capacity:  capacity,
		metrics:   metrics,
	}
}

func (s *Notifier) postMessage(channelID string, message slack.Message) (notifier.MessageRef, error) {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	channel, timestamp, err := s.api.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return notifier.MessageRef{}, fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	return notifier.MessageRef{Channel: channel, Timestamp: timestamp}, nil
}

func (s *Notifier) updateMessage(ref notifier.MessageRef, message slack.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	_, _, _, err := s.api.UpdateMessageContext(
		ctx,
		ref.Channel,
		ref.Timestamp,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		return fmt.Errorf("failed to update message: %w", err)
	}
	s.metrics.IncSlackNotifSent()
	return nil
}

// openDM opens (or reuses) the direct-message conversation with a user.
func (s *Notifier) openDM(userID string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	channel, _, _, err := s.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to open DM with %s: %w", userID, err)
	}
	return channel.ID, nil
}

func (s *Notifier) PublishQueueStatus(players []player.Player) (notifier.MessageRef, error) {
	return s.postMessage(s.channelID, s.formatQueueStatus(players))
}

func (s *Notifier) UpdateQueueStatus(ref notifier.MessageRef, players []player.Player) error {
	return s.updateMessage(ref, s.formatQueueStatus(players))
}

func (s *Notifier) DeleteMessage(ref notifier.MessageRef) error {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	if _, _, err := s.api.DeleteMessageContext(ctx, ref.Channel, ref.Timestamp); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (s *Notifier) SendDirectMessage(userID, text string) error {
	dm, err := s.openDM(userID)
	if err != nil {
		return err
	}
	msg := slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
	_, err = s.postMessage(dm, msg)
	return err
}

func (s *Notifier) SendCountdown(userID string, remaining time.Duration) (notifier.MessageRef, error) {
	dm, err := s.openDM(userID)
	if err != nil {
		return notifier.MessageRef{}, err
	}
	return s.postMessage(dm, s.formatCountdown(remaining))
}

func (s *Notifier) UpdateCountdown(ref notifier.MessageRef, remaining time.Duration) error {
	return s.updateMessage(ref, s.formatCountdown(remaining))
}

func (s *Notifier) CreateMatchChannel(name string, members []player.Player) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	channel, err := s.api.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
		IsPrivate:   true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create match channel %s: %w", name, err)
	}

	if _, err := s.api.InviteUsersToConversationContext(ctx, channel.ID, player.IDs(members)...); err != nil {
		// Invites can partially fail (deactivated accounts); the channel is
		// still usable for everyone else.
		log.Error("Failed to invite players to match channel", "error", err, "channelID", channel.ID)
	}
	return channel.ID, nil
}

func (s *Notifier) ArchiveMatchChannel(channelID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	if err := s.api.ArchiveConversationContext(ctx, channelID); err != nil {
		return fmt.Errorf("failed to archive channel %s: %w", channelID, err)
	}
	return nil
}

func (s *Notifier) PublishTeams(channelID string, teamA, teamB []player.Player) error {
	_, err := s.postMessage(channelID, s.formatTeams(teamA, teamB))
	return err
}

func (s *Notifier) PublishCheckInStatus(channelID string, checkedIn, waiting []player.Player) error {
	_, err := s.postMessage(channelID, s.formatCheckInStatus(checkedIn, waiting))
	return err
}

func (s *Notifier) PublishMatchReady(channelID string) error {
	msg := slack.NewBlockMessage(
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "🎮 All players checked in — match is live!", true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "Good luck! A team leader reports the result with `/report team1` or `/report team2`.", false, false), nil, nil),
	)
	_, err := s.postMessage(channelID, msg)
	return err
}

func (s *Notifier) PublishCancellation(channelID string) error {
	msg := slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "⏰ Check-in time expired — the match was cancelled and everyone is back in the queue.", false, false), nil, nil),
	)
	_, err := s.postMessage(channelID, msg)
	return err
}

func (s *Notifier) PublishResult(channelID string, winners, losers []player.Player) error {
	_, err := s.postMessage(channelID, s.formatResult(winners, losers))
	return err
}

// ResolvePlayer looks a user up and prefers their display name.
func (s *Notifier) ResolvePlayer(userID string) (player.Player, error) {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	user, err := s.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return player.Player{}, fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	name := user.Profile.DisplayName
	if name == "" {
		name = user.RealName
	}
	if name == "" {
		name = user.Name
	}
	return player.Player{ID: user.ID, Name: name}, nil
}

// ChannelMembers returns the resolved, non-bot members of a channel.
func (s *Notifier) ChannelMembers(channelID string) ([]player.Player, error) {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	var ids []string
	params := &slack.GetUsersInConversationParameters{ChannelID: channelID, Limit: 200}
	for {
		page, cursor, err := s.api.GetUsersInConversationContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list members of %s: %w", channelID, err)
		}
		ids = append(ids, page...)
		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}

	players := make([]player.Player, 0, len(ids))
	for _, id := range ids {
		user, err := s.api.GetUserInfoContext(ctx, id)
		if err != nil {
			log.Error("Failed to resolve channel member", "error", err, "userID", id)
			continue
		}
		if user.IsBot || user.ID == "USLACKBOT" {
			continue
		}
		name := user.Profile.DisplayName
		if name == "" {
			name = user.RealName
		}
		if name == "" {
			name = user.Name
		}
		players = append(players, player.Player{ID: user.ID, Name: name})
	}
	return players, nil
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(stats []rank.PlayerStats) (any, error) {
	return s.formatLeaderboard(stats), nil
}

// FormatQueueResponse formats the pool for a slash command response.
func (s *Notifier) FormatQueueResponse(players []player.Player) (any, error) {
	return s.formatQueueStatus(players), nil
}
