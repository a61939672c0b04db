package studybot

import (
	"github.com/bwmarrin/discordgo"
)

const (
	ChannelOption   = "channel"
	UserOption      = "user"
	SecondsOption   = "seconds"
	StudyDateOption = "study_date"
)

func int64Ptr(i int64) *int64 {
	return &i
}

var TodayCommand = discordgo.ApplicationCommand{
	Name:        "today",
	Description: "today's study time ranking (06:00 to 06:00)",
}

var WeekCommand = discordgo.ApplicationCommand{
	Name:        "week",
	Description: "this week's accumulated study time per member (from Monday 06:00)",
}

var LeaderboardCommand = discordgo.ApplicationCommand{
	Name:        "leaderboard",
	Description: "study time ranking over the last 7 days",
}

var MeCommand = discordgo.ApplicationCommand{
	Name:        "me",
	Description: "your accumulated study time today and this week",
}

var StudyStatusCommand = discordgo.ApplicationCommand{
	Name:        "study_status",
	Description: "who is studying right now",
}

var SetAnnounceChannelCommand = discordgo.ApplicationCommand{
	Name:                     "set_announce_channel",
	Description:              "set the channel for the daily 06:00 report",
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        ChannelOption,
			Description: "text channel to announce in",
			Required:    true,
		},
	},
}

var AddMonitorChannelCommand = discordgo.ApplicationCommand{
	Name:                     "add_monitor_channel",
	Description:              "watch a text channel for study keywords",
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        ChannelOption,
			Description: "text channel to watch",
			Required:    true,
		},
	},
}

var RemoveMonitorChannelCommand = discordgo.ApplicationCommand{
	Name:                     "remove_monitor_channel",
	Description:              "stop watching a text channel for study keywords",
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        ChannelOption,
			Description: "text channel to stop watching",
			Required:    true,
		},
	},
}

var ListMonitorChannelsCommand = discordgo.ApplicationCommand{
	Name:                     "list_monitor_channels",
	Description:              "list watched text channels",
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
}

var DebugAddTimeCommand = discordgo.ApplicationCommand{
	Name:                     "debug_add_time",
	Description:              "manually add study seconds for a member",
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        UserOption,
			Description: "member to credit",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        SecondsOption,
			Description: "seconds to add (must be > 0)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        StudyDateOption,
			Description: "study day YYYY-MM-DD (default: today)",
		},
	},
}

var AnnounceNowCommand = discordgo.ApplicationCommand{
	Name:                     "announce_now",
	Description:              "run the boundary cutover and publish yesterday's report now",
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
}

// AllCommands is the full slash-command set, registered by cmd/register.
var AllCommands = []*discordgo.ApplicationCommand{
	&TodayCommand,
	&WeekCommand,
	&LeaderboardCommand,
	&MeCommand,
	&StudyStatusCommand,
	&SetAnnounceChannelCommand,
	&AddMonitorChannelCommand,
	&RemoveMonitorChannelCommand,
	&ListMonitorChannelsCommand,
	&DebugAddTimeCommand,
	&AnnounceNowCommand,
}
