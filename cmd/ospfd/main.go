// Command ospfd runs the OSPFv2 routing daemon: it loads an area/
// interface configuration, opens the shared raw OSPF socket, and drives
// the core protocol engine's event loop until terminated.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/atulnandan/ospfd"
	"github.com/atulnandan/ospfd/internal/netsys"
)

var (
	configPath string
	routerID   string
	logLevel   string
)

// newRootCmd builds the ospfd command tree, grounded on cobra's standard
// root-command-plus-persistent-flags pattern: spec.md's Non-goals keep
// ospfd to a single "run" behavior, so there are no subcommands, only
// flags layered over the YAML config file's own fields (a flag wins over
// the file when both set the same thing).
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ospfd",
		Short: "OSPFv2 link-state routing daemon",
		RunE:  runDaemon,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "/etc/ospfd/ospfd.yaml", "path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&routerID, "router-id", "", "router ID override (dotted-quad), takes precedence over the config file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override: debug, info, warn, error")
	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	fc, err := loadFileConfig(configPath)
	if err != nil {
		return err
	}

	log := logrus.New()
	level := fc.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}

	idStr := fc.RouterID
	if routerID != "" {
		idStr = routerID
	}
	rid, err := parseIPv4(idStr)
	if err != nil {
		return fmt.Errorf("router_id: %w", err)
	}

	conn, err := netsys.Listen()
	if err != nil {
		return fmt.Errorf("opening OSPF socket: %w", err)
	}
	defer conn.Close()

	sys := netsys.New(conn, log)
	o := ospf.NewOspf(rid, sys)

	if err := applyFileConfig(o, fc); err != nil {
		return fmt.Errorf("applying configuration: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go watchReload(ctx, reload, o, log)

	log.WithField("router_id", idStr).Info("ospfd starting")
	d := newDaemon(o, conn, log)
	return d.run(ctx)
}

// watchReload re-reads the config file and re-applies it through the
// core's cfg_start/cfg_update/cfg_done transaction on SIGHUP, per
// SPEC_FULL.md's configuration section: the router ID itself is fixed
// for the process's lifetime, but areas and interfaces may be added,
// changed, or removed without a restart.
func watchReload(ctx context.Context, sig <-chan os.Signal, o *ospf.Ospf, log *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			fc, err := loadFileConfig(configPath)
			if err != nil {
				log.WithError(err).Error("reload: reading config")
				continue
			}
			if err := applyFileConfig(o, fc); err != nil {
				log.WithError(err).Error("reload: applying config")
				continue
			}
			log.Info("configuration reloaded")
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
