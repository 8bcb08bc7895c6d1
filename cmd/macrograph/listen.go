package main

import (
	"github.com/aretw0/macrograph/internal/cli"
	natsAdapter "github.com/aretw0/macrograph/pkg/adapters/nats"
	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run command responses received over NATS",
	Long: `Subscribes to a NATS subject and dispatches every message as a command response.
A message may also be an envelope: {"response": "..."} or {"text": "<free-text request>"}.
Requests with a reply subject receive the outcomes as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		url := app.Config.NATS.URL
		if cmd.Flags().Changed("url") {
			url, _ = cmd.Flags().GetString("url")
		}
		subject := app.Config.NATS.Subject
		if cmd.Flags().Changed("subject") {
			subject, _ = cmd.Flags().GetString("subject")
		}
		queue, _ := cmd.Flags().GetString("queue")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		conn, err := natsAdapter.Connect(sc, natsAdapter.DefaultConnectionConfig(url), app.Logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := natsAdapter.Close(conn); err != nil {
				app.Logger.Warn("nats close failed", "error", err)
			}
		}()

		listener := natsAdapter.NewListener(conn, app.Engine, subject,
			natsAdapter.WithQueue(queue),
			natsAdapter.WithLogger(app.Logger),
		)
		return listener.Listen(sc)
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().String("url", "nats://localhost:4222", "NATS server URL (overrides nats.url)")
	listenCmd.Flags().String("subject", "macrograph.commands", "Subject to subscribe to (overrides nats.subject)")
	listenCmd.Flags().String("queue", natsAdapter.DefaultQueue, "Queue group shared by listener replicas")
}
