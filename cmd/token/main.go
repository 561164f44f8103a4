// Command token mints a signed identity token for local development.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/adapters/auth"
	"github.com/dkeye/Chat/internal/config"
	"github.com/dkeye/Chat/internal/domain"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	username := flag.String("username", "", "display name carried by the token")
	id := flag.String("id", "", "user id (random when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *id == "" {
		*id = uuid.NewString()
	}
	user, err := domain.NewUser(domain.UserID(*id), *username)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid user")
	}
	verifier, err := auth.NewVerifier(cfg.Secret, cfg.TokenIssuer, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("verifier")
	}
	token, err := verifier.IssueToken(*user)
	if err != nil {
		log.Fatal().Err(err).Msg("sign token")
	}
	fmt.Println(token)
}
