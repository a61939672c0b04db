package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/hywlin/studybot-go"
)

// discordAnnouncer delivers daily reports as plain channel messages.
type discordAnnouncer struct {
	cl *discordgo.Session
}

func newDiscordAnnouncer(cl *discordgo.Session) *discordAnnouncer {
	return &discordAnnouncer{cl: cl}
}

func (a *discordAnnouncer) Publish(ctx context.Context, cfg studybot.GuildConfig, report dailyReport) error {
	text := buildDailyReport(report, func(userID studybot.UserID) string {
		return memberDisplayName(a.cl, cfg.GuildID, userID)
	})
	_, err := a.cl.ChannelMessageSend(string(cfg.AnnounceChannelID), text, discordgo.WithContext(ctx))
	return err
}

func memberDisplayName(cl *discordgo.Session, guildID studybot.GuildID, userID studybot.UserID) string {
	member, err := cl.State.Member(string(guildID), string(userID))
	if err != nil || member == nil || member.User == nil {
		return fmt.Sprintf("User %s", userID)
	}
	if member.Nick != "" {
		return member.Nick
	}
	return member.User.Username
}

// buildDailyReport renders the 06:00 announcement: a mention header, then
// one line per member ordered by the prior day's ranking, each combining the
// day total/rank with the week-to-date total/rank.
func buildDailyReport(report dailyReport, name func(studybot.UserID) string) string {
	dayRanks := studybot.DenseRanks(report.DayRows)
	weekRanks := studybot.DenseRanks(report.WeekRows)
	weekTotals := make(map[studybot.UserID]int, len(report.WeekRows))
	for _, row := range report.WeekRows {
		weekTotals[row.UserID] = row.Seconds
	}

	var mentions []string
	lines := []string{fmt.Sprintf("**Study report for %s (06:00 ~ 06:00) | week-to-date included**", report.PriorDay)}
	for _, row := range report.DayRows {
		mentions = append(mentions, fmt.Sprintf("<@%s>", row.UserID))

		weekRank := "—"
		if r, ok := weekRanks[row.UserID]; ok {
			weekRank = fmt.Sprintf("%d", r)
		}
		lines = append(lines, fmt.Sprintf(
			"%d. **%s** — yesterday: %s (#%d) | week so far: %s (#%s)",
			dayRanks[row.UserID],
			name(row.UserID),
			studybot.FormatHMS(row.Seconds),
			dayRanks[row.UserID],
			studybot.FormatHMS(weekTotals[row.UserID]),
			weekRank,
		))
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(mentions, " "))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n(published automatically at 06:00)")
	return sb.String()
}
