package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/rank"
)

// Action IDs carried by the interactive buttons. The interactivity endpoint
// dispatches on these.
const (
	ActionQueueJoin  = "queue_join"
	ActionQueueLeave = "queue_leave"
	ActionCheckIn    = "match_check_in"
)

// formatQueueStatus creates the channel message showing the pool using Block Kit.
func (s *Notifier) formatQueueStatus(players []player.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🎮 Queue: %d/%d", len(players), s.capacity), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "The queue is empty. Be the first to join!", false, false), nil, nil))
	} else {
		var lines []string
		for i, p := range players {
			lines = append(lines, fmt.Sprintf("%d. <@%s>", i+1, p.ID))
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))
	}

	joinBtn := slack.NewButtonBlockElement(ActionQueueJoin, "join", slack.NewTextBlockObject("plain_text", "Join", true, false))
	joinBtn.Style = slack.StylePrimary
	leaveBtn := slack.NewButtonBlockElement(ActionQueueLeave, "leave", slack.NewTextBlockObject("plain_text", "Leave", true, false))
	blocks = append(blocks, slack.NewActionBlock("queue_actions", joinBtn, leaveBtn))

	return slack.NewBlockMessage(blocks...)
}

// formatTeams creates the match-channel message announcing the two teams.
func (s *Notifier) formatTeams(teamA, teamB []player.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚔️ Match found!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject("mrkdwn", "*Team 1*\n"+teamLines(teamA), false, false),
		slack.NewTextBlockObject("mrkdwn", "*Team 2*\n"+teamLines(teamB), false, false),
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject("mrkdwn", "The first player of each team is the leader and reports the result.", false, false),
	))

	checkInBtn := slack.NewButtonBlockElement(ActionCheckIn, "check_in", slack.NewTextBlockObject("plain_text", "Check in", true, false))
	checkInBtn.Style = slack.StylePrimary
	blocks = append(blocks, slack.NewActionBlock("match_actions", checkInBtn))

	return slack.NewBlockMessage(blocks...)
}

// teamLines renders a team roster with the leader marked.
func teamLines(team []player.Player) string {
	var lines []string
	for i, p := range team {
		if i == 0 {
			lines = append(lines, fmt.Sprintf("• <@%s> 👑", p.ID))
			continue
		}
		lines = append(lines, fmt.Sprintf("• <@%s>", p.ID))
	}
	return strings.Join(lines, "\n")
}

// formatCheckInStatus creates the rolling check-in progress message.
func (s *Notifier) formatCheckInStatus(checkedIn, waiting []player.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	total := len(checkedIn) + len(waiting)
	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("✅ Check-in: %d/%d", len(checkedIn), total), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(waiting) > 0 {
		var lines []string
		for _, p := range waiting {
			lines = append(lines, fmt.Sprintf("• <@%s>", p.ID))
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "Still waiting for:\n"+strings.Join(lines, "\n"), false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatCountdown creates the direct message that keeps a player's remaining
// check-in time current.
func (s *Notifier) formatCountdown(remaining time.Duration) slack.Message {
	minutes := int(remaining.Round(time.Minute) / time.Minute)
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	text := fmt.Sprintf("⏱️ *Your match is ready!* You have *%d %s* left to check in.", minutes, unit)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

// formatResult creates the match-channel message announcing the winners.
func (s *Notifier) formatResult(winners, losers []player.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Match reported!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject("mrkdwn", "*Winners*\n"+teamLines(winners), false, false),
		slack.NewTextBlockObject("mrkdwn", "*Losers*\n"+teamLines(losers), false, false),
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(stats []rank.PlayerStats) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(stats) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, stat := range stats {
		position := i + 1
		var medal string
		switch position {
		case 1:
			medal = "🥇 "
		case 2:
			medal = "🥈 "
		case 3:
			medal = "🥉 "
		}

		playerText := fmt.Sprintf("%d. %s%s\n> *Score*: %+d | Record: %d-%d",
			position,
			medal,
			stat.PlayerName,
			stat.Score,
			stat.Wins,
			stat.Losses,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
