package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	studybot "github.com/hywlin/studybot-go"
)

var isProd bool

func main() {
	flag.BoolVar(&isProd, "prod", false, "")
	flag.Parse()
	if isProd {
		godotenv.Load(".env")
	} else {
		godotenv.Load(".env.dev")
	}

	//
	token := os.Getenv("STUDYBOT_BOT_TOKEN")
	if token == "" {
		log.Fatalln("provide STUDYBOT_BOT_TOKEN")
	}
	bot, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalln(err)
	}

	// Open a connection
	if err := bot.Open(); err != nil {
		log.Fatalln("Error opening connection:", err)
	}
	defer bot.Close()

	app, _ := bot.Application("@me")

	created, err := bot.ApplicationCommandBulkOverwrite(app.ID, "", studybot.AllCommands)
	if err != nil {
		log.Fatalln(err)
	}

	for _, cmd := range created {
		fmt.Printf("%s: %s\n", cmd.Name, cmd.Description)
	}
}
