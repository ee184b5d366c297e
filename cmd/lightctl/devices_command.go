package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"light-rpc/controlcenter"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List devices known to Control Center",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withControlCenter(cmd.Context(), func(cc *controlcenter.ControlCenter) error {
				devices, err := cc.Devices(cmd.Context())
				if err != nil {
					return err
				}
				return printDevices(cmd.OutOrStdout(), devices, format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv, table or auto (table on a terminal)")
	return cmd
}

func printDevices(w io.Writer, devices []controlcenter.Device, format string) error {
	if format == "auto" {
		format = "csv"
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = "table"
		}
	}

	switch format {
	case "csv":
		cw := csv.NewWriter(w)
		cw.Write([]string{"id", "name"})
		for _, d := range devices {
			cw.Write([]string{d.DeviceID, d.Name})
		}
		cw.Flush()
		return cw.Error()
	case "table":
		rows := make([][]string, 0, len(devices))
		for _, d := range devices {
			rows = append(rows, []string{d.DeviceID, d.Name, d.FirmwareVersion})
		}
		_, err := fmt.Fprintln(w, renderTable([]string{"ID", "Name", "Firmware"}, rows))
		return err
	default:
		return fmt.Errorf("unknown format %q (want csv, table or auto)", format)
	}
}
