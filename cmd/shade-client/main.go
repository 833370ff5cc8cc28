package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/shade-labs/shade-privacy-go/pkg/client"
	"github.com/shade-labs/shade-privacy-go/pkg/config"
	"github.com/shade-labs/shade-privacy-go/pkg/logger"
	"github.com/shade-labs/shade-privacy-go/pkg/types"
)

func main() {
	app := &cli.App{
		Name:  "shade-client",
		Usage: "Submit encrypted intents to the Shade privacy API and stream proof events",
		Description: `A client for the Shade privacy intent API.

This client can:
- Create intents with encrypted, HMAC-signed payloads
- Fetch a single intent or list intents with pagination
- Stream proof-ready notifications for an intent over WebSocket`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key sent as x-api-key",
				EnvVars: []string{config.EnvShadeAPIKey},
			},
			&cli.StringFlag{
				Name:    "hmac-secret",
				Usage:   "Shared secret used for encryption and request signing",
				EnvVars: []string{config.EnvShadeHMACSecret},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Base URL for the API",
				Value:   config.DefaultBaseURL,
				EnvVars: []string{config.EnvShadeBaseURL},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvShadeVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new intent",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "recipient",
						Usage:    "Recipient address",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     "amount",
						Usage:    "Amount to transfer",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Token symbol",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "wallet-type",
						Usage: "Wallet type identifier",
						Value: "eip-155",
					},
					&cli.StringFlag{
						Name:     "wallet-signature",
						Usage:    "Wallet signature over the payload",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "note",
						Usage: "Optional metadata note",
					},
				},
				Action: createCommand,
			},
			{
				Name:  "get",
				Usage: "Fetch an intent by ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "intent-id",
						Usage:    "Intent ID",
						Required: true,
					},
				},
				Action: getCommand,
			},
			{
				Name:  "list",
				Usage: "List intents with pagination",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of intents to return",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Pagination offset",
						Value: 0,
					},
				},
				Action: listCommand,
			},
			{
				Name:  "listen",
				Usage: "Stream proof events for an intent until the connection closes or interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "intent-id",
						Usage:    "Intent ID",
						Required: true,
					},
				},
				Action: listenCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(c *cli.Context) (*client.Client, *zap.Logger, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	sdk, err := client.NewClient(&client.Config{
		APIKey:     c.String("api-key"),
		HMACSecret: c.String("hmac-secret"),
		BaseURL:    c.String("base-url"),
		Logger:     l,
	})
	if err != nil {
		return nil, nil, err
	}
	return sdk, l, nil
}

func createCommand(c *cli.Context) error {
	sdk, _, err := newClient(c)
	if err != nil {
		return err
	}

	payload := types.NewIntentPayload(
		c.String("recipient"),
		c.Float64("amount"),
		c.String("token"),
		c.String("wallet-type"),
	)

	metadata := map[string]interface{}{
		"requestId": uuid.New().String(),
	}
	if note := c.String("note"); note != "" {
		metadata["note"] = note
	}

	result, err := sdk.CreateIntent(c.Context, payload, c.String("wallet-signature"), metadata)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func getCommand(c *cli.Context) error {
	sdk, _, err := newClient(c)
	if err != nil {
		return err
	}

	result, err := sdk.GetIntent(c.Context, c.String("intent-id"))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func listCommand(c *cli.Context) error {
	sdk, _, err := newClient(c)
	if err != nil {
		return err
	}

	result, err := sdk.ListIntents(c.Context, c.Int("limit"), c.Int("offset"))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func listenCommand(c *cli.Context) error {
	sdk, l, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	intentID := c.String("intent-id")
	l.Sugar().Infow("Listening for proof events", "intent_id", intentID)

	return sdk.ListenProofs(ctx, intentID, func(event map[string]interface{}) {
		if err := printJSON(event); err != nil {
			l.Sugar().Warnw("Failed to print event", "error", err)
		}
	})
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
