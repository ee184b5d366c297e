package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"light-rpc/controlcenter"
	"light-rpc/registry"
	"light-rpc/server"
)

const registrationTTL = 10 // seconds

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	var listen string
	var devices int
	var register bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Serve a simulated Control Center",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("listen") {
				listen = cfg.Simulate.Listen
			}
			if !cmd.Flags().Changed("devices") {
				devices = cfg.Simulate.Devices
			}

			sim := controlcenter.NewSimulator(devices, ctx.logger, server.WithMaxFrameBytes(cfg.Transport.MaxFrameBytes))
			srv := sim.Server()

			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}
			url := "ws://" + ln.Addr().String() + "/"

			if register {
				if !cfg.UsesDiscovery() {
					return fmt.Errorf("--register needs discovery.etcd_endpoints in the config")
				}
				reg, err := registry.NewEtcdRegistry(cfg.Discovery.EtcdEndpoints, ctx.logger)
				if err != nil {
					return err
				}
				defer reg.Close()
				instance := registry.ServiceInstance{Addr: url, Weight: 1}
				if err := srv.Advertise(cmd.Context(), reg, cfg.Discovery.Service, instance, registrationTTL); err != nil {
					return err
				}
				go logPeers(cmd.Context(), reg, cfg.Discovery.Service, ctx.logger)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "simulating %d devices on %s\n", devices, url)
			errc := make(chan error, 1)
			go func() { errc <- srv.Serve(ln) }()

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
			}

			ctx.logger.Info("shutting down", zap.String("listen", url))
			if err := srv.Shutdown(5 * time.Second); err != nil {
				return err
			}
			return <-errc
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:1804", "Address to listen on")
	cmd.Flags().IntVar(&devices, "devices", 2, "Number of simulated lights")
	cmd.Flags().BoolVar(&register, "register", false, "Register in etcd under discovery.service")
	return cmd
}

// logPeers logs the registered peers each time the set changes, until ctx ends.
func logPeers(ctx context.Context, reg registry.Registry, service string, logger *zap.Logger) {
	for instances := range reg.Watch(ctx, service) {
		addrs := make([]string, len(instances))
		for i, inst := range instances {
			addrs[i] = inst.Addr
		}
		logger.Info("peers changed", zap.String("service", service), zap.Strings("peers", addrs))
	}
}
