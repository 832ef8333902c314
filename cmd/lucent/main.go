// Lucent CLI - clinical trial success lookups
//
// Usage:
//
//	lucent predict NCT00072579 [NCT01721746 ...]
//	lucent repl
//	lucent tiers
//	lucent about
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Alias1177/Lucent/config"
	"github.com/Alias1177/Lucent/internal/app"
	"github.com/Alias1177/Lucent/internal/report"
	"github.com/Alias1177/Lucent/internal/session"
	"github.com/Alias1177/Lucent/models"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	cliApp := &cli.App{
		Name:    "lucent",
		Usage:   "Clinical trial success probability lookups",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-base",
				Usage:   "Prediction service base URL",
				EnvVars: []string{"LUCENT_API_BASE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			predictCommand(),
			replCommand(),
			{
				Name:  "tiers",
				Usage: "Show the risk tier boundaries",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, report.Tiers())
					return nil
				},
			},
			{
				Name:  "about",
				Usage: "Show the prediction model card",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, report.Model(models.DefaultModelInfo))
					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newSession loads config, applies flag overrides and builds a session
func newSession(c *cli.Context) (*session.Session, func(), error) {
	app.SetupLogger(c.String("log-level"), os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if base := c.String("api-base"); base != "" {
		cfg.APIBase = base
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	opts := []session.Option{}
	cleanup := func() {}

	db, err := app.OpenJournal(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Lookup journal unavailable, continuing without it")
	} else if db != nil {
		opts = append(opts, session.WithJournal(db))
		cleanup = func() { db.Close() }
	}

	return session.New(app.NewPredictionClient(cfg), opts...), cleanup, nil
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:      "predict",
		Usage:     "Look up one or more trials",
		ArgsUsage: "NCTID [NCTID...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("at least one NCTID is required", 2)
			}

			sess, cleanup, err := newSession(c)
			if err != nil {
				return err
			}
			defer cleanup()

			failed := 0
			for _, id := range c.Args().Slice() {
				st, err := sess.Submit(c.Context, id)
				if !printOutcome(c.App.Writer, st, err) {
					continue
				}
				fmt.Fprintln(c.App.Writer)
				if st.Status == session.StatusFailed {
					failed++
				}
			}

			fmt.Fprintln(c.App.Writer, report.History(sess.History()))

			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d lookups failed", failed, c.NArg()), 1)
			}
			return nil
		},
	}
}

func replCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive lookups (type history, tiers, about or quit)",
		Action: func(c *cli.Context) error {
			sess, cleanup, err := newSession(c)
			if err != nil {
				return err
			}
			defer cleanup()

			return runREPL(c.Context, sess, bufio.NewScanner(c.App.Reader), c.App.Writer)
		},
	}
}

// printOutcome writes a resolved lookup. A superseded outcome is not the
// session's state and is skipped; it reports whether anything was written.
func printOutcome(out io.Writer, st session.State, err error) bool {
	if errors.Is(err, session.ErrSuperseded) {
		log.Debug().Str("nctid", st.NCTID).Msg("Skipping superseded lookup")
		return false
	}
	fmt.Fprintln(out, report.State(st))
	return true
}

func runREPL(ctx context.Context, sess *session.Session, in *bufio.Scanner, out io.Writer) error {
	fmt.Fprintln(out, report.State(sess.Current()))
	fmt.Fprint(out, "> ")

	for in.Scan() {
		line := in.Text()
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "quit", "exit":
			return nil
		case "history":
			fmt.Fprintln(out, report.History(sess.History()))
		case "tiers":
			fmt.Fprintln(out, report.Tiers())
		case "about":
			fmt.Fprintln(out, report.Model(models.DefaultModelInfo))
		default:
			st, err := sess.Submit(ctx, line)
			printOutcome(out, st, err)
		}
		fmt.Fprint(out, "> ")
	}
	return in.Err()
}
