package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/swiftbrowser/internal/config"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
	"github.com/andresuchdata/swiftbrowser/pkg/logger"
)

type contextKey string

const clientKey contextKey = "swift-client"

func newCredentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Aliases:  []string{"u"},
			Usage:    "Swift user, project:user for Keystone",
			Required: true,
			EnvVars:  []string{"SWIFT_USERNAME"},
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Swift password or key",
			Required: true,
			EnvVars:  []string{"SWIFT_PASSWORD"},
		},
	}
}

// authenticate logs in and stores the client in the cli context
func authenticate(connector swift.Connector) cli.BeforeFunc {
	return func(c *cli.Context) error {
		creds, err := connector.Authenticate(c.Context, c.String("username"), c.String("password"))
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		c.Context = context.WithValue(c.Context, clientKey, connector.Connect(creds))
		return nil
	}
}

func clientFrom(c *cli.Context) (swift.Client, error) {
	client, ok := c.Context.Value(clientKey).(swift.Client)
	if !ok {
		return nil, fmt.Errorf("not logged in")
	}
	return client, nil
}

func newApp(connector swift.Connector, shareTTL time.Duration, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "swiftctl",
		Usage:     "Inspect a Swift account from the command line",
		Writer:    out,
		ErrWriter: out,
		Flags:     newCredentialFlags(),
		Before:    authenticate(connector),
		Commands: []*cli.Command{
			{
				Name:   "containers",
				Usage:  "List the containers of the account",
				Action: listContainers,
			},
			{
				Name:      "objects",
				Usage:     "List one folder level of a container",
				ArgsUsage: "<container> [prefix]",
				Action:    listObjects,
			},
			{
				Name:      "tempurl",
				Usage:     "Print a temporary GET URL for an object",
				ArgsUsage: "<container> <object>",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "ttl",
						Usage:   "How long the URL stays valid",
						Value:   shareTTL,
						EnvVars: []string{"TEMPURL_SHARE_TTL"},
					},
					&cli.StringFlag{
						Name:  "method",
						Usage: "HTTP method the URL is valid for",
						Value: "GET",
					},
				},
				Action: printTempURL,
			},
			{
				Name:  "temp-key",
				Usage: "Print the account temp URL key, creating one if missing",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rotate",
						Usage: "Replace the key, invalidating every URL signed with the old one",
						Value: false,
					},
				},
				Action: tempKey,
			},
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	cfg := config.Load()
	logger.Configure(os.Stderr)
	logger.SetLevel(cfg.Server.LogLevel)

	app := newApp(swift.NewConnector(cfg.Swift), cfg.TempURL.ShareTTL, os.Stdout)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
