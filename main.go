package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"license-desk/src/config"
	"license-desk/src/db"
	"license-desk/src/mail"
	"license-desk/src/request"
	"license-desk/src/server"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	if level, err := strconv.Atoi(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(zerolog.Level(level))
	}

	conn, err := db.Init(cfg)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer conn.Close()

	store := request.NewPGStore(conn)

	cmd := "server"
	if len(os.Args) > 1 {
		cmd = strings.ToLower(os.Args[1])
	}

	switch cmd {
	case "server":
		mailer := mail.NewMailer(mail.NewSender(cfg), cfg.AdminEmail)
		server.NewServe(cfg, store, mailer).InitServer(cfg.Port)
	case "migrate":
		if err := store.CreateSchema(); err != nil {
			log.Fatal().Msg(err.Error())
		}
		fmt.Println("license_requests schema is ready")
	default:
		fmt.Println("unsupported command")
	}
}
