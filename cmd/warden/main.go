package main

import (
	"log/slog"
	"os"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "warden",
		Usage:   "chat moderation daemon for game servers",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   40,
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the moderation service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Value:   "sqlite://data/warden/warden.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for the violation cache; empty selects the in-process cache",
			EnvVars: []string{"WARDEN_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "policy-json",
			Usage:   "path to the moderation policy snapshot (banned words, thresholds, rules)",
			EnvVars: []string{"WARDEN_POLICY_JSON"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for the moderation API",
			Value:   ":4999",
			EnvVars: []string{"WARDEN_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":4998",
			EnvVars: []string{"WARDEN_METRICS_LISTEN"},
		},
		&cli.Int64Flag{
			Name:    "violation-window-ms",
			Usage:   "override the policy's active-violation window, in milliseconds",
			EnvVars: []string{"WARDEN_VIOLATION_WINDOW_MS"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		srv, err := NewServer(Config{
			Logger:            logger,
			DatabaseURL:       cctx.String("database-url"),
			MaxDBConnections:  cctx.Int("max-db-connections"),
			RedisURL:          cctx.String("redis-url"),
			PolicyPath:        cctx.String("policy-json"),
			ViolationWindowMs: cctx.Int64("violation-window-ms"),
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				os.Exit(-1)
			}
		}()

		return srv.Run(cctx.String("bind"))
	},
}
