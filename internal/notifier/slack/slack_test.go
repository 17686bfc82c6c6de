package slack

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/rank"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc            func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
	updateMessageContextFunc          func(ctx context.Context, channelID, timestamp string, options ...slackapi.MsgOption) (string, string, string, error)
	deleteMessageContextFunc          func(ctx context.Context, channel, messageTimestamp string) (string, string, error)
	openConversationContextFunc       func(ctx context.Context, params *slackapi.OpenConversationParameters) (*slackapi.Channel, bool, bool, error)
	createConversationContextFunc     func(ctx context.Context, params slackapi.CreateConversationParams) (*slackapi.Channel, error)
	inviteUsersToConversationFunc     func(ctx context.Context, channelID string, users ...string) (*slackapi.Channel, error)
	archiveConversationContextFunc    func(ctx context.Context, channelID string) error
	getUsersInConversationContextFunc func(ctx context.Context, params *slackapi.GetUsersInConversationParameters) ([]string, string, error)
	getUserInfoContextFunc            func(ctx context.Context, user string) (*slackapi.User, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return channelID, "123456789.12345", nil
}

func (m *mockSlackAPI) UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slackapi.MsgOption) (string, string, string, error) {
	if m.updateMessageContextFunc != nil {
		return m.updateMessageContextFunc(ctx, channelID, timestamp, options...)
	}
	return channelID, timestamp, "", nil
}

func (m *mockSlackAPI) DeleteMessageContext(ctx context.Context, channel, messageTimestamp string) (string, string, error) {
	if m.deleteMessageContextFunc != nil {
		return m.deleteMessageContextFunc(ctx, channel, messageTimestamp)
	}
	return channel, messageTimestamp, nil
}

func (m *mockSlackAPI) OpenConversationContext(ctx context.Context, params *slackapi.OpenConversationParameters) (*slackapi.Channel, bool, bool, error) {
	if m.openConversationContextFunc != nil {
		return m.openConversationContextFunc(ctx, params)
	}
	channel := &slackapi.Channel{}
	channel.ID = "D" + params.Users[0]
	return channel, false, false, nil
}

func (m *mockSlackAPI) CreateConversationContext(ctx context.Context, params slackapi.CreateConversationParams) (*slackapi.Channel, error) {
	if m.createConversationContextFunc != nil {
		return m.createConversationContextFunc(ctx, params)
	}
	channel := &slackapi.Channel{}
	channel.ID = "C-MATCH"
	return channel, nil
}

func (m *mockSlackAPI) InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slackapi.Channel, error) {
	if m.inviteUsersToConversationFunc != nil {
		return m.inviteUsersToConversationFunc(ctx, channelID, users...)
	}
	return &slackapi.Channel{}, nil
}

func (m *mockSlackAPI) ArchiveConversationContext(ctx context.Context, channelID string) error {
	if m.archiveConversationContextFunc != nil {
		return m.archiveConversationContextFunc(ctx, channelID)
	}
	return nil
}

func (m *mockSlackAPI) GetUsersInConversationContext(ctx context.Context, params *slackapi.GetUsersInConversationParameters) ([]string, string, error) {
	if m.getUsersInConversationContextFunc != nil {
		return m.getUsersInConversationContextFunc(ctx, params)
	}
	return nil, "", nil
}

func (m *mockSlackAPI) GetUserInfoContext(ctx context.Context, user string) (*slackapi.User, error) {
	if m.getUserInfoContextFunc != nil {
		return m.getUserInfoContextFunc(ctx, user)
	}
	return &slackapi.User{ID: user, Name: user}, nil
}

func somePlayers(n int) []player.Player {
	out := make([]player.Player, n)
	for i := range out {
		out[i] = player.Player{ID: fmt.Sprintf("U%d", i+1), Name: fmt.Sprintf("Player %d", i+1)}
	}
	return out
}

func TestPublishQueueStatus_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", 10, m)

	ref, err := n.PublishQueueStatus(somePlayers(3))

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, notifier.MessageRef{Channel: "C123", Timestamp: "ts123"}, ref)
	assert.Equal(t, 1, m.SlackNotifSentCalls)
	assert.Equal(t, 0, m.SlackNotifFailedCalls)
}

func TestPublishQueueStatus_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", 10, m)

	_, err := n.PublishQueueStatus(nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, m.SlackNotifSentCalls)
	assert.Equal(t, 1, m.SlackNotifFailedCalls)
}

func TestSendCountdown_OpensDM(t *testing.T) {
	var postedTo string
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postedTo = channelID
			return channelID, "ts1", nil
		},
	}
	n := NewNotifierWithAPI(api, "C123", 10, metrics.NewMock())

	ref, err := n.SendCountdown("U42", 5*time.Minute)

	require.NoError(t, err)
	assert.Equal(t, "DU42", postedTo)
	assert.Equal(t, "DU42", ref.Channel)
}

func TestCreateMatchChannel(t *testing.T) {
	t.Run("creates a private channel and invites everyone", func(t *testing.T) {
		var invited []string
		api := &mockSlackAPI{
			createConversationContextFunc: func(ctx context.Context, params slackapi.CreateConversationParams) (*slackapi.Channel, error) {
				assert.Equal(t, "match-abc12345", params.ChannelName)
				assert.True(t, params.IsPrivate)
				channel := &slackapi.Channel{}
				channel.ID = "C-MATCH"
				return channel, nil
			},
			inviteUsersToConversationFunc: func(ctx context.Context, channelID string, users ...string) (*slackapi.Channel, error) {
				invited = users
				return &slackapi.Channel{}, nil
			},
		}
		n := NewNotifierWithAPI(api, "C123", 10, metrics.NewMock())

		channelID, err := n.CreateMatchChannel("match-abc12345", somePlayers(10))

		require.NoError(t, err)
		assert.Equal(t, "C-MATCH", channelID)
		assert.Len(t, invited, 10)
	})

	t.Run("a failed invite does not fail the channel", func(t *testing.T) {
		api := &mockSlackAPI{
			inviteUsersToConversationFunc: func(ctx context.Context, channelID string, users ...string) (*slackapi.Channel, error) {
				return nil, errors.New("user_is_restricted")
			},
		}
		n := NewNotifierWithAPI(api, "C123", 10, metrics.NewMock())

		channelID, err := n.CreateMatchChannel("match-abc12345", somePlayers(10))

		require.NoError(t, err)
		assert.Equal(t, "C-MATCH", channelID)
	})
}

func TestResolvePlayer(t *testing.T) {
	api := &mockSlackAPI{
		getUserInfoContextFunc: func(ctx context.Context, user string) (*slackapi.User, error) {
			return &slackapi.User{
				ID:       user,
				Name:     "login-name",
				RealName: "Real Name",
				Profile:  slackapi.UserProfile{DisplayName: "Display Name"},
			}, nil
		},
	}
	n := NewNotifierWithAPI(api, "C123", 10, metrics.NewMock())

	p, err := n.ResolvePlayer("U1")

	require.NoError(t, err)
	assert.Equal(t, player.Player{ID: "U1", Name: "Display Name"}, p)
}

func TestChannelMembers(t *testing.T) {
	t.Run("filters out bots and follows pagination", func(t *testing.T) {
		api := &mockSlackAPI{
			getUsersInConversationContextFunc: func(ctx context.Context, params *slackapi.GetUsersInConversationParameters) ([]string, string, error) {
				if params.Cursor == "" {
					return []string{"U1", "U-BOT"}, "page2", nil
				}
				return []string{"U2"}, "", nil
			},
			getUserInfoContextFunc: func(ctx context.Context, user string) (*slackapi.User, error) {
				return &slackapi.User{ID: user, Name: user, IsBot: user == "U-BOT"}, nil
			},
		}
		n := NewNotifierWithAPI(api, "C123", 10, metrics.NewMock())

		members, err := n.ChannelMembers("C123")

		require.NoError(t, err)
		assert.Equal(t, []string{"U1", "U2"}, player.IDs(members))
	})

	t.Run("an unresolvable member is skipped", func(t *testing.T) {
		api := &mockSlackAPI{
			getUsersInConversationContextFunc: func(ctx context.Context, params *slackapi.GetUsersInConversationParameters) ([]string, string, error) {
				return []string{"U1", "U-GONE"}, "", nil
			},
			getUserInfoContextFunc: func(ctx context.Context, user string) (*slackapi.User, error) {
				if user == "U-GONE" {
					return nil, errors.New("user_not_found")
				}
				return &slackapi.User{ID: user, Name: user}, nil
			},
		}
		n := NewNotifierWithAPI(api, "C123", 10, metrics.NewMock())

		members, err := n.ChannelMembers("C123")

		require.NoError(t, err)
		assert.Equal(t, []string{"U1"}, player.IDs(members))
	})
}

func TestFormatQueueStatus(t *testing.T) {
	n := &Notifier{channelID: "C123", capacity: 10}

	t.Run("empty pool", func(t *testing.T) {
		msg := n.formatQueueStatus(nil)
		require.Len(t, msg.Blocks.BlockSet, 3)

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🎮 Queue: 0/10", header.Text.Text)

		_, ok = msg.Blocks.BlockSet[2].(*slackapi.ActionBlock)
		assert.True(t, ok, "expected join/leave buttons")
	})

	t.Run("lists players in order", func(t *testing.T) {
		msg := n.formatQueueStatus(somePlayers(3))

		header := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		assert.Equal(t, "🎮 Queue: 3/10", header.Text.Text)

		section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, section.Text.Text, "1. <@U1>")
		assert.Contains(t, section.Text.Text, "3. <@U3>")
	})
}

func TestFormatTeams(t *testing.T) {
	n := &Notifier{channelID: "C123", capacity: 10}
	players := somePlayers(10)

	msg := n.formatTeams(players[:5], players[5:])

	require.Len(t, msg.Blocks.BlockSet, 4)
	section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	require.Len(t, section.Fields, 2)
	assert.Contains(t, section.Fields[0].Text, "<@U1> 👑")
	assert.Contains(t, section.Fields[1].Text, "<@U6> 👑")

	actions, ok := msg.Blocks.BlockSet[3].(*slackapi.ActionBlock)
	require.True(t, ok)
	require.Len(t, actions.Elements.ElementSet, 1)
	button, ok := actions.Elements.ElementSet[0].(*slackapi.ButtonBlockElement)
	require.True(t, ok)
	assert.Equal(t, ActionCheckIn, button.ActionID)
}

func TestFormatCheckInStatus(t *testing.T) {
	n := &Notifier{channelID: "C123", capacity: 10}
	players := somePlayers(10)

	msg := n.formatCheckInStatus(players[:6], players[6:])

	header := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	assert.Equal(t, "✅ Check-in: 6/10", header.Text.Text)
	section := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	assert.Contains(t, section.Text.Text, "<@U7>")
	assert.NotContains(t, section.Text.Text, "<@U1>")
}

func TestFormatCountdown(t *testing.T) {
	n := &Notifier{channelID: "C123", capacity: 10}

	msg := n.formatCountdown(5 * time.Minute)
	section := msg.Blocks.BlockSet[0].(*slackapi.SectionBlock)
	assert.Contains(t, section.Text.Text, "*5 minutes*")

	msg = n.formatCountdown(1 * time.Minute)
	section = msg.Blocks.BlockSet[0].(*slackapi.SectionBlock)
	assert.Contains(t, section.Text.Text, "*1 minute*")
}

func TestFormatLeaderboard(t *testing.T) {
	n := &Notifier{channelID: "C123", capacity: 10}

	t.Run("empty", func(t *testing.T) {
		msg := n.formatLeaderboard(nil)
		require.Len(t, msg.Blocks.BlockSet, 2)
	})

	t.Run("medals for the top three", func(t *testing.T) {
		stats := []rank.PlayerStats{
			{PlayerID: "U1", PlayerName: "Alice", Wins: 5, Losses: 0, Score: 5},
			{PlayerID: "U2", PlayerName: "Bob", Wins: 3, Losses: 1, Score: 2},
			{PlayerID: "U3", PlayerName: "Cleo", Wins: 3, Losses: 1, Score: 2},
			{PlayerID: "U4", PlayerName: "Dana", Wins: 0, Losses: 2, Score: -2},
		}

		msg := n.formatLeaderboard(stats)

		require.Len(t, msg.Blocks.BlockSet, 5)
		first := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		assert.Contains(t, first.Text.Text, "🥇 Alice")
		assert.Contains(t, first.Text.Text, "*Score*: +5")
		fourth := msg.Blocks.BlockSet[4].(*slackapi.SectionBlock)
		assert.NotContains(t, fourth.Text.Text, "🥉")
		assert.Contains(t, fourth.Text.Text, "*Score*: -2")
	})
}
