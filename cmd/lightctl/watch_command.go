package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"light-rpc/client"
	"light-rpc/message"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print notifications pushed by Control Center until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			events := make(chan []byte, 16)
			onBroadcast := func(r *message.Response) {
				// keep the session's read loop moving if stdout stalls
				select {
				case events <- append([]byte(nil), r.Result...):
				default:
				}
			}

			return ctx.withClient(cmd.Context(), func(cl *client.Client) error {
				for {
					select {
					case e := <-events:
						fmt.Fprintln(out, string(e))
					case <-cl.Done():
						if err := cl.Err(); err != nil && !errors.Is(err, io.EOF) {
							return err
						}
						return nil
					case <-cmd.Context().Done():
						return nil
					}
				}
			}, client.WithBroadcastHandler(onBroadcast))
		},
	}
}
