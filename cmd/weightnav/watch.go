package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"weightnav/internal/model"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// newWatchCommand prints one line per solution.completed event until
// interrupted or the server closes the stream.
func newWatchCommand(ctx context.Context, input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if _, err := loadConfig(input); err != nil {
			return err
		}
		c, _, err := websocket.DefaultDialer.DialContext(ctx, input.streamURL, nil)
		if err != nil {
			return errors.Wrap(err, "dial")
		}
		defer c.Close()
		go func() {
			<-ctx.Done()
			_ = c.Close()
		}()

		out := cmd.OutOrStdout()
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return errors.Wrap(err, "read")
			}
			switch m.Type {
			case "connection_ack":
				log.WithField("url", input.streamURL).Info("watching solutions")
			case "next":
				var evt model.SolutionEvent
				if err := json.Unmarshal(m.Payload, &evt); err != nil {
					log.WithError(err).Warn("malformed event")
					continue
				}
				fmt.Fprintf(out, "%s %s label=%q reachable=%d length=%.6f strategy=%s\n",
					evt.TS, evt.SolutionID, evt.Label, evt.Reachable, evt.Length, evt.Strategy)
			}
		}
	}
}
