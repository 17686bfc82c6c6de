package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/tenman-bot/tenman/internal/bans"
	"github.com/tenman-bot/tenman/internal/engine"
	"github.com/tenman-bot/tenman/internal/match"
	slackfmt "github.com/tenman-bot/tenman/internal/notifier/slack"
	"github.com/tenman-bot/tenman/internal/queue"
)

const leaderboardLimit = 10

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// QueueHandler serves the pool and the current match as JSON.
func (s *Server) QueueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := struct {
			Players any         `json:"players"`
			Match   *match.View `json:"match,omitempty"`
		}{Players: s.Engine.QueueStatus()}
		if view, ok := s.Engine.CurrentMatch(); ok {
			resp.Match = &view
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to encode queue to JSON", "error", err)
		}
	}
}

func (s *Server) BansHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := s.Engine.Bans()
		if list == nil {
			list = make([]bans.Ban, 0)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(list); err != nil {
			log.Error("Failed to encode bans to JSON", "error", err)
		}
	}
}

// LeaderboardHandler serves the player leaderboard as JSON.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := leaderboardLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		stats := s.Engine.Leaderboard(limit)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			log.Error("Failed to encode player stats to JSON", "error", err)
		}
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(slackMsg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// respondEphemeral writes a private text-only slash command response. User
// mistakes never surface as HTTP errors; Slack expects a 200 with the
// explanation.
func respondEphemeral(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("Failed to encode slash command response", "error", err)
	}
}

// engineErrorText maps an engine error to the private message shown to the
// invoking user.
func engineErrorText(err error) string {
	switch {
	case errors.Is(err, queue.ErrBanned):
		return "You are currently timed out from the queue."
	case errors.Is(err, queue.ErrAlreadyQueued):
		return "You are already in the queue."
	case errors.Is(err, queue.ErrQueueFull):
		return "The queue is full while a match is in progress. Try again once it finishes."
	case errors.Is(err, match.ErrAlreadyCheckedIn):
		return "You have already checked in."
	case errors.Is(err, match.ErrNotInMatch):
		return "You are not part of the current match."
	case errors.Is(err, match.ErrNotAllCheckedIn):
		return "The match is not live yet — still waiting for check-ins."
	case errors.Is(err, match.ErrMatchNotFound):
		return "There is no active match to report."
	case errors.Is(err, match.ErrMatchInProgress):
		return "A match is already in progress."
	case errors.Is(err, engine.ErrPermissionDenied):
		return "You are not allowed to use this command."
	case errors.Is(err, engine.ErrNotAuthorized):
		return "Only the owner can force a match."
	case errors.Is(err, engine.ErrInsufficientPlayers):
		return "Not enough eligible players in this channel to force a match."
	case errors.Is(err, bans.ErrInvalidDuration):
		return "The timeout duration must be positive."
	case errors.Is(err, bans.ErrNotBanned):
		return "That player is not timed out."
	default:
		return "Something went wrong, please try again."
	}
}

// parseMention extracts the user ID from a Slack mention like <@U123|name>.
// A bare ID passes through unchanged.
func parseMention(raw string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(raw, "<@"), ">")
	if i := strings.Index(trimmed, "|"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

// QueueCommandHandler returns a handler for the /queue Slack command.
func (s *Server) QueueCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := s.Notifier.FormatQueueResponse(s.Engine.QueueStatus())
		if err != nil {
			http.Error(w, "Failed to format queue", http.StatusInternalServerError)
			log.Error("Failed to format queue", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := s.Engine.Leaderboard(leaderboardLimit)

		msg, err := s.Notifier.FormatLeaderboardResponse(stats)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}

// ReportCommandHandler returns a handler for the /report Slack command.
// Usage: /report team1|team2
func (s *Server) ReportCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		userID := r.FormValue("user_id")

		var winner match.Team
		switch strings.ToLower(strings.TrimSpace(r.FormValue("text"))) {
		case string(match.TeamA):
			winner = match.TeamA
		case string(match.TeamB):
			winner = match.TeamB
		default:
			respondEphemeral(w, "Usage: `/report team1` or `/report team2`")
			return
		}

		if err := s.Engine.Report(userID, winner); err != nil {
			// Non-leader reports share a sentinel with check-in misuse; give
			// the reporter the sharper message.
			if errors.Is(err, match.ErrNotInMatch) {
				respondEphemeral(w, "Only a team leader of the current match can report the result.")
				return
			}
			respondEphemeral(w, engineErrorText(err))
			return
		}
		respondEphemeral(w, fmt.Sprintf("Result recorded: %s wins. 🏆", winner))
	}
}

// TimeoutCommandHandler returns a handler for the /timeout Slack command.
// Usage: /timeout @player [days] [hours] [minutes]
func (s *Server) TimeoutCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		actorID := r.FormValue("user_id")

		fields := strings.Fields(r.FormValue("text"))
		if len(fields) < 2 {
			respondEphemeral(w, "Usage: `/timeout @player [days] [hours] [minutes]`")
			return
		}
		targetID := parseMention(fields[0])

		var parts [3]int
		for i, raw := range fields[1:] {
			if i >= len(parts) {
				break
			}
			value, err := strconv.Atoi(raw)
			if err != nil || value < 0 {
				respondEphemeral(w, "Usage: `/timeout @player [days] [hours] [minutes]`")
				return
			}
			parts[i] = value
		}

		if err := s.Engine.Timeout(actorID, targetID, parts[0], parts[1], parts[2]); err != nil {
			respondEphemeral(w, engineErrorText(err))
			return
		}
		respondEphemeral(w, fmt.Sprintf("<@%s> has been timed out for %dd %dh %dm.", targetID, parts[0], parts[1], parts[2]))
	}
}

// UntimeoutCommandHandler returns a handler for the /untimeout Slack command.
// Usage: /untimeout @player
func (s *Server) UntimeoutCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		actorID := r.FormValue("user_id")

		fields := strings.Fields(r.FormValue("text"))
		if len(fields) != 1 {
			respondEphemeral(w, "Usage: `/untimeout @player`")
			return
		}
		targetID := parseMention(fields[0])

		if err := s.Engine.Untimeout(actorID, targetID); err != nil {
			respondEphemeral(w, engineErrorText(err))
			return
		}
		respondEphemeral(w, fmt.Sprintf("<@%s> may queue again.", targetID))
	}
}

// ForceMatchCommandHandler returns a handler for the /forcematch Slack command.
func (s *Server) ForceMatchCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		actorID := r.FormValue("user_id")
		channelID := r.FormValue("channel_id")

		if err := s.Engine.ForceMatch(actorID, channelID); err != nil {
			respondEphemeral(w, engineErrorText(err))
			return
		}
		respondEphemeral(w, "Match forced — check-in is open.")
	}
}

// ResetStatsCommandHandler returns a handler for the /resetstats Slack command.
func (s *Server) ResetStatsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		actorID := r.FormValue("user_id")

		if err := s.Engine.ResetStats(actorID); err != nil {
			respondEphemeral(w, engineErrorText(err))
			return
		}
		respondEphemeral(w, "All player stats have been reset.")
	}
}

// InteractiveHandler dispatches Block Kit button presses: queue join/leave
// and match check-in. Slack expects a prompt 200; feedback goes through the
// interaction's response URL.
func (s *Server) InteractiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}

		var callback slack.InteractionCallback
		if err := json.Unmarshal([]byte(r.FormValue("payload")), &callback); err != nil {
			log.Error("Failed to unmarshal interaction payload", "error", err)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if callback.Type != slack.InteractionTypeBlockActions {
			w.WriteHeader(http.StatusOK)
			return
		}

		userID := callback.User.ID
		for _, action := range callback.ActionCallback.BlockActions {
			switch action.ActionID {
			case slackfmt.ActionQueueJoin:
				if _, err := s.Engine.Join(userID); err != nil {
					s.sendActionFeedback(callback.ResponseURL, engineErrorText(err))
				}
			case slackfmt.ActionQueueLeave:
				s.Engine.Leave(userID)
			case slackfmt.ActionCheckIn:
				if err := s.Engine.CheckIn(userID); err != nil {
					s.sendActionFeedback(callback.ResponseURL, engineErrorText(err))
				}
			default:
				log.Warn("Ignoring unknown block action", "actionID", action.ActionID)
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

// sendActionFeedback posts a private note back through the interaction's
// response URL. Best effort; the button press already got its 200.
func (s *Server) sendActionFeedback(responseURL, text string) {
	if responseURL == "" {
		return
	}
	err := slack.PostWebhook(responseURL, &slack.WebhookMessage{
		Text:            text,
		ResponseType:    slack.ResponseTypeEphemeral,
		ReplaceOriginal: false,
	})
	if err != nil {
		log.Error("Failed to send interaction feedback", "error", err)
	}
}
