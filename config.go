package studybot

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	BotName     string
	BotToken    string
}

func LoadConfig() (Config, error) {
	isProd := flag.Bool("p", false, "is production environment")
	flag.Parse()
	if *isProd {
		_ = godotenv.Load(".env")
	} else {
		_ = godotenv.Load(".env.dev")
	}

	config := Config{
		DatabaseURL: os.Getenv("STUDYBOT_DB_PATH"),
		BotName:     os.Getenv("STUDYBOT_BOT_NAME"),
		BotToken:    os.Getenv("STUDYBOT_BOT_TOKEN"),
	}

	if config.BotToken == "" {
		return Config{}, fmt.Errorf("required environment variable: STUDYBOT_BOT_TOKEN")
	}

	if config.DatabaseURL == "" {
		config.DatabaseURL = "studybot.db"
	}
	if config.BotName == "" {
		config.BotName = "StudyBot"
	}

	return config, nil
}
