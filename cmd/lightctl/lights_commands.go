package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"light-rpc/controlcenter"
)

type change func(controlcenter.DeviceConfiguration) controlcenter.SetDeviceConfiguration

func newLightCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "on [device]",
			Short: "Turn a device (or every device) on",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return modify(cmd, ctx, optionalArg(args, 0), func(c controlcenter.DeviceConfiguration) controlcenter.SetDeviceConfiguration {
					return c.Modify().SetOn(true)
				})
			},
		},
		{
			Use:   "off [device]",
			Short: "Turn a device (or every device) off",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return modify(cmd, ctx, optionalArg(args, 0), func(c controlcenter.DeviceConfiguration) controlcenter.SetDeviceConfiguration {
					return c.Modify().SetOn(false)
				})
			},
		},
		{
			Use:   "set-brightness <brightness> [device]",
			Short: "Set the brightness of a device (or every device)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				brightness, err := parseLevel("brightness", args[0])
				if err != nil {
					return err
				}
				return modify(cmd, ctx, optionalArg(args, 1), func(c controlcenter.DeviceConfiguration) controlcenter.SetDeviceConfiguration {
					return c.Modify().SetBrightness(brightness)
				})
			},
		},
		{
			Use:   "set-temperature <temperature> [device]",
			Short: "Set the colour temperature of a device (or every device)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				temperature, err := parseLevel("temperature", args[0])
				if err != nil {
					return err
				}
				return modify(cmd, ctx, optionalArg(args, 1), func(c controlcenter.DeviceConfiguration) controlcenter.SetDeviceConfiguration {
					return c.Modify().SetTemperature(temperature)
				})
			},
		},
	}
}

func modify(cmd *cobra.Command, ctx *commandContext, device string, fn change) error {
	return ctx.withControlCenter(cmd.Context(), func(cc *controlcenter.ControlCenter) error {
		return cc.ModifyDeviceOrAll(cmd.Context(), device, fn)
	})
}

func parseLevel(name, arg string) (uint16, error) {
	v, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: want 0-65535", name, arg)
	}
	return uint16(v), nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
