package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/picn-go/icnfwd/core"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var config = core.DefaultConfig()

// rootCmd is the icnfwd daemon entrypoint: a cobra command taking an
// optional config file path (the defaults apply when it is omitted),
// run until an interrupt or SIGTERM arrives.
var rootCmd = &cobra.Command{
	Use:     "icnfwd CONFIG-FILE",
	Short:   "A single-node ICN forwarding daemon",
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runForwarder,
}

func init() {
	rootCmd.Flags().StringVar(&config.MgmtBind, "mgmt-bind", config.MgmtBind, "address to bind the management HTTP server to")
}

func runForwarder(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		config.BaseDir = filepath.Dir(args[0])
		if err := core.ReadYaml(config, args[0]); err != nil {
			return err
		}
	}

	d := newDaemon(config)
	if err := d.start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	core.Log.Info(d, "received signal, shutting down", "signal", sig)

	d.stop()
	return nil
}
