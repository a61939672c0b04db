package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/hywlin/studybot-go"
)

const defaultErrorMsg = "Looks like something went wrong. Try again in a bit."

// HandleVoiceStateUpdate opens a voice timer on channel join and closes it
// on leave. Moving between voice channels is ignored.
func HandleVoiceStateUpdate(ctx context.Context, manager SessionManager, s *discordgo.Session, u *discordgo.VoiceStateUpdate) {
	if u.GuildID == "" {
		return
	}
	if u.Member != nil && u.Member.User != nil && u.Member.User.Bot {
		return
	}

	wasIn := u.BeforeUpdate != nil && u.BeforeUpdate.ChannelID != ""
	isIn := u.ChannelID != ""
	now := time.Now()

	key := studybot.SessionKey{
		GuildID: studybot.GuildID(u.GuildID),
		UserID:  studybot.UserID(u.UserID),
		Kind:    studybot.VoiceSession,
	}

	switch {
	case !wasIn && isIn:
		if err := manager.Start(ctx, key, now); err != nil {
			if errors.Is(err, studybot.ErrAlreadyRunning) {
				// duplicate join event, at-least-once delivery
				log.Debug("voice timer already running", "guildID", u.GuildID, "userID", u.UserID)
				return
			}
			log.Error("failed voice timer start", "guildID", u.GuildID, "userID", u.UserID, "err", err)
		}
	case wasIn && !isIn:
		if _, err := manager.Stop(ctx, key, now); err != nil {
			if errors.Is(err, studybot.ErrNotRunning) {
				log.Debug("no voice timer to stop", "guildID", u.GuildID, "userID", u.UserID)
				return
			}
			log.Error("failed voice timer stop", "guildID", u.GuildID, "userID", u.UserID, "err", err)
		}
	}
}

// HandleTextMessage scans monitored channels for the trigger keywords and
// routes matches to the text timer. Unmatched text is ignored.
func HandleTextMessage(ctx context.Context, manager SessionManager, guildCfg studybot.GuildConfigRepo, keywords *studybot.Keywords, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	action := keywords.Match(m.Content)
	if action == studybot.NoAction {
		return
	}

	monitored, err := guildCfg.IsMonitorChannel(ctx, studybot.GuildID(m.GuildID), studybot.ChannelID(m.ChannelID))
	if err != nil {
		log.Error("failed monitor channel lookup", "guildID", m.GuildID, "channelID", m.ChannelID, "err", err)
		return
	}
	if !monitored {
		return
	}

	key := studybot.SessionKey{
		GuildID: studybot.GuildID(m.GuildID),
		UserID:  studybot.UserID(m.Author.ID),
		Kind:    studybot.TextSession,
	}
	at := m.Timestamp

	var reply string
	switch action {
	case studybot.StartAction:
		// a paused timer resumes instead of erroring with "already running"
		if manager.HasPaused(key) {
			err = manager.Resume(ctx, key, at)
			reply = "Timer resumed. Keep going!"
		} else {
			err = manager.Start(ctx, key, at)
			reply = "Timer started. Happy studying!"
		}
	case studybot.StopAction:
		var total int
		total, err = manager.Stop(ctx, key, at)
		reply = fmt.Sprintf("Timer stopped. You studied %s.", studybot.FormatHMS(total))
	case studybot.PauseAction:
		var total int
		total, err = manager.Pause(ctx, key, at)
		reply = fmt.Sprintf("Timer paused at %s.", studybot.FormatHMS(total))
	case studybot.ResumeAction:
		err = manager.Resume(ctx, key, at)
		reply = "Timer resumed. Keep going!"
	}

	if err != nil {
		reply = userFacingError(err)
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("%s %s", m.Author.Mention(), reply)); err != nil {
		log.Error("failed timer reply", "channelID", m.ChannelID, "err", err)
	}
}

func userFacingError(err error) string {
	switch {
	case errors.Is(err, studybot.ErrAlreadyRunning):
		return "Your timer is already running."
	case errors.Is(err, studybot.ErrNotRunning):
		return "You don't have a running timer."
	case errors.Is(err, studybot.ErrNoPausedSession):
		return "You don't have a paused timer."
	case errors.Is(err, studybot.ErrInvalidArgument):
		return err.Error()
	default:
		log.Error("failed timer operation", "err", err)
		return defaultErrorMsg
	}
}

// commandRouter dispatches slash commands.
type commandRouter struct {
	manager   SessionManager
	scheduler *cutoverScheduler
	timeLog   studybot.TimeLogRepo
	guildCfg  studybot.GuildConfigRepo
	clock     studybot.Clock
}

func (cr *commandRouter) Handle(ctx context.Context, s *discordgo.Session, m *discordgo.InteractionCreate) {
	if m.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if m.GuildID == "" {
		respond(s, m, "This command only works inside a server.")
		return
	}

	data := m.ApplicationCommandData()
	guildID := studybot.GuildID(m.GuildID)
	now := time.Now()

	switch data.Name {
	case studybot.TodayCommand.Name:
		day := cr.clock.StudyDayOf(now)
		cr.respondRanking(ctx, s, m, guildID, day, day, fmt.Sprintf("Today (study day %s)", day))

	case studybot.WeekCommand.Name:
		start := cr.clock.WeekStartStudyDay(now)
		end := start.AddDays(6)
		cr.respondRanking(ctx, s, m, guildID, start, end, fmt.Sprintf("This week (%s ~ %s)", start, end))

	case studybot.LeaderboardCommand.Name:
		end := cr.clock.StudyDayOf(now)
		start := end.AddDays(-6)
		cr.respondRanking(ctx, s, m, guildID, start, end, fmt.Sprintf("Last 7 days (%s ~ %s)", start, end))

	case studybot.MeCommand.Name:
		cr.handleMe(ctx, s, m, guildID, now)

	case studybot.StudyStatusCommand.Name:
		cr.handleStudyStatus(s, m, guildID, now)

	case studybot.SetAnnounceChannelCommand.Name:
		channel := data.Options[0].ChannelValue(s)
		if err := cr.guildCfg.SetAnnounceChannel(ctx, guildID, studybot.ChannelID(channel.ID)); err != nil {
			log.Error("failed announce channel update", "guildID", guildID, "err", err)
			respond(s, m, defaultErrorMsg)
			return
		}
		respond(s, m, fmt.Sprintf("Announce channel set to <#%s>.", channel.ID))

	case studybot.AddMonitorChannelCommand.Name:
		channel := data.Options[0].ChannelValue(s)
		if err := cr.guildCfg.AddMonitorChannel(ctx, guildID, studybot.ChannelID(channel.ID)); err != nil {
			log.Error("failed monitor channel add", "guildID", guildID, "err", err)
			respond(s, m, defaultErrorMsg)
			return
		}
		respond(s, m, fmt.Sprintf("Now watching <#%s> for study keywords.", channel.ID))

	case studybot.RemoveMonitorChannelCommand.Name:
		channel := data.Options[0].ChannelValue(s)
		if err := cr.guildCfg.RemoveMonitorChannel(ctx, guildID, studybot.ChannelID(channel.ID)); err != nil {
			log.Error("failed monitor channel remove", "guildID", guildID, "err", err)
			respond(s, m, defaultErrorMsg)
			return
		}
		respond(s, m, fmt.Sprintf("Stopped watching <#%s>.", channel.ID))

	case studybot.ListMonitorChannelsCommand.Name:
		channels, err := cr.guildCfg.ListMonitorChannels(ctx, guildID)
		if err != nil {
			log.Error("failed monitor channel list", "guildID", guildID, "err", err)
			respond(s, m, defaultErrorMsg)
			return
		}
		if len(channels) == 0 {
			respond(s, m, "No channels are being watched.")
			return
		}
		var lines []string
		for _, ch := range channels {
			lines = append(lines, fmt.Sprintf("- <#%s>", ch))
		}
		respond(s, m, "Watched channels:\n"+strings.Join(lines, "\n"))

	case studybot.DebugAddTimeCommand.Name:
		cr.handleDebugAddTime(ctx, s, m, guildID, now)

	case studybot.AnnounceNowCommand.Name:
		if err := cr.scheduler.RunNow(ctx); err != nil {
			log.Error("failed admin-triggered cutover", "guildID", guildID, "err", err)
			respond(s, m, defaultErrorMsg)
			return
		}
		respond(s, m, "Cutover complete, report published.")
	}
}

func (cr *commandRouter) respondRanking(ctx context.Context, s *discordgo.Session, m *discordgo.InteractionCreate, guildID studybot.GuildID, start, end studybot.StudyDay, title string) {
	var rows []studybot.MemberTotal
	var err error
	if start == end {
		rows, err = cr.timeLog.TotalsForDay(ctx, guildID, start)
	} else {
		rows, err = cr.timeLog.TotalsForRange(ctx, guildID, start, end)
	}
	if err != nil {
		log.Error("failed ranking query", "guildID", guildID, "start", start, "end", end, "err", err)
		respond(s, m, defaultErrorMsg)
		return
	}
	if len(rows) == 0 {
		respond(s, m, "No records yet.")
		return
	}

	lines := []string{fmt.Sprintf("**%s**", title)}
	for i, row := range rows {
		name := memberDisplayName(s, guildID, row.UserID)
		lines = append(lines, fmt.Sprintf("%d. **%s** — %s", i+1, name, studybot.FormatHMS(row.Seconds)))
	}
	respond(s, m, strings.Join(lines, "\n"))
}

func (cr *commandRouter) handleMe(ctx context.Context, s *discordgo.Session, m *discordgo.InteractionCreate, guildID studybot.GuildID, now time.Time) {
	userID := studybot.UserID(m.Member.User.ID)
	today := cr.clock.StudyDayOf(now)
	weekStart := cr.clock.WeekStartStudyDay(now)

	todaySecs, err := cr.timeLog.MemberTotalForDay(ctx, guildID, userID, today)
	if err != nil {
		log.Error("failed member total query", "guildID", guildID, "userID", userID, "err", err)
		respond(s, m, defaultErrorMsg)
		return
	}
	weekSecs, err := cr.timeLog.MemberTotalForRange(ctx, guildID, userID, weekStart, today)
	if err != nil {
		log.Error("failed member total query", "guildID", guildID, "userID", userID, "err", err)
		respond(s, m, defaultErrorMsg)
		return
	}

	respond(s, m, fmt.Sprintf("Today: %s\nThis week: %s", studybot.FormatHMS(todaySecs), studybot.FormatHMS(weekSecs)))
}

func (cr *commandRouter) handleStudyStatus(s *discordgo.Session, m *discordgo.InteractionCreate, guildID studybot.GuildID, now time.Time) {
	recs := cr.manager.ListActive(guildID)
	if len(recs) == 0 {
		respond(s, m, "Nobody is studying right now.")
		return
	}

	lines := []string{"**Studying right now**"}
	for _, rec := range recs {
		elapsed := int(now.Sub(rec.StartedAt).Seconds()) + rec.AccumulatedSeconds
		if elapsed < 0 {
			elapsed = 0
		}
		name := memberDisplayName(s, guildID, rec.UserID)
		lines = append(lines, fmt.Sprintf("- **%s** (%s) — %s", name, rec.Kind, studybot.FormatHMS(elapsed)))
	}
	respond(s, m, strings.Join(lines, "\n"))
}

func (cr *commandRouter) handleDebugAddTime(ctx context.Context, s *discordgo.Session, m *discordgo.InteractionCreate, guildID studybot.GuildID, now time.Time) {
	data := m.ApplicationCommandData()

	var userID studybot.UserID
	var dayStr string
	seconds := 0
	for _, opt := range data.Options {
		switch opt.Name {
		case studybot.UserOption:
			userID = studybot.UserID(opt.UserValue(nil).ID)
		case studybot.SecondsOption:
			seconds = int(opt.IntValue())
		case studybot.StudyDateOption:
			dayStr = opt.StringValue()
		}
	}

	day, err := debugAddSeconds(ctx, cr.timeLog, cr.clock, guildID, userID, dayStr, seconds, now)
	if err != nil {
		if errors.Is(err, studybot.ErrInvalidArgument) {
			respond(s, m, err.Error())
			return
		}
		log.Error("failed debug time add", "guildID", guildID, "userID", userID, "err", err)
		respond(s, m, defaultErrorMsg)
		return
	}
	respond(s, m, fmt.Sprintf("Added %s to <@%s> on %s.", studybot.FormatHMS(seconds), userID, day))
}

func respond(s *discordgo.Session, m *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(m.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Error("failed interaction response", "err", err)
	}
}
