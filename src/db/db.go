package db

import (
	"context"
	"fmt"
	"os"

	"license-desk/src/config"

	"github.com/go-pg/pg/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes and returns a postgres database connection object.
func Init(cfg config.Config) (*pg.DB, error) {
	dbAddr := fmt.Sprintf("%s:%s", cfg.DBHost, cfg.DBPort)

	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("missing postgres password. Export \"LICENSE_DB_PASS=<your_password>\"")
	}

	conn := pg.Connect(&pg.Options{
		Addr:     dbAddr,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
	})

	// Print SQL queries to logger if loglevel is set to debug.
	conn.AddQueryHook(loggerHook{})

	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	return conn, nil
}

type loggerHook struct{}

func (h loggerHook) BeforeQuery(ctx context.Context, evt *pg.QueryEvent) (context.Context, error) {
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Caller().Logger()

	q, err := evt.FormattedQuery()
	if err != nil {
		return nil, err
	}

	if evt.Err != nil {
		logger.Debug().Msgf("%s executing a query:\n%s\n", evt.Err, q)
	} else {
		logger.Debug().Msg(string(q))
	}

	return ctx, nil
}

func (loggerHook) AfterQuery(context.Context, *pg.QueryEvent) error {
	return nil
}
