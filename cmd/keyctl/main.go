// keyctl manages access keys in the configured store and offers a terminal
// front end to a running portal.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"keyportal/portal"
	"keyportal/repository"
	"keyportal/service"
	"keyportal/util"
)

func help() {
	fmt.Println(`Usage: keyctl <command> [flags]

Commands:
  list    [-status S] [-secrets]        list keys
  add     [-name N] [-secret S] [-max-uses M]
  modify  -name N -max-uses M           change the usage limit (-1 = unlimited)
  reset   -name N                       set the usage count back to zero
  info    -name N [-secrets]
  verify  -name N -code C               check a code from an authenticator app
  delete  -name N
  qr      -name N [-out key.png]        write the authenticator enrollment QR code
  import  -file keys.json
  export  [-file keys.json]             defaults to stdout
  fetch   [-url URL]                    interactive code retrieval against a portal`)
}

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	cfg, err := util.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	log, err := util.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cfg *util.Config, log *zap.Logger, cmd string, args []string) error {
	switch cmd {
	case "help", "-h", "--help":
		help()
		return nil
	case "fetch":
		return fetchCommand(cfg, log, args)
	}

	repo, closeStore, err := repository.Open(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	admin := service.NewKeyAdminService(repo, log, cfg.AppName)
	return adminCommand(admin, log, cmd, args, os.Stdout)
}

func fetchCommand(cfg *util.Config, log *zap.Logger, args []string) error {
	fs := newFlagSet("fetch")
	url := fs.String("url", cfg.PortalURL, "portal base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := portal.NewClient(*url, cfg.HTTPTimeout)
	opts := portal.Options{
		Debounce:      cfg.Debounce,
		ToastLifetime: cfg.ToastLifetime,
		Logger:        log,
	}
	fmt.Printf("Connected to %s. Type a key and press Enter; \".clear\" resets, \".retry\" clears the result, Ctrl-D quits.\n", *url)
	return runFetch(context.Background(), client, opts, os.Stdin, os.Stdout)
}
