package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"keyportal/dto"
	"keyportal/model"
	"keyportal/seeder"
	"keyportal/service"
)

var errUsage = errors.New("invalid usage")

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func requireName(fs *flag.FlagSet, name string) error {
	if name == "" {
		fmt.Fprintf(fs.Output(), "Error: -name is required for %s.\n", fs.Name())
		fs.Usage()
		return errUsage
	}
	return nil
}

func adminCommand(admin *service.KeyAdminService, log *zap.Logger, cmd string, args []string, out io.Writer) error {
	fs := newFlagSet(cmd)
	name := fs.String("name", "", "access key name")

	switch cmd {
	case "list":
		status := fs.String("status", "", "only keys in this status (active, low, depleted, unlimited)")
		secrets := fs.Bool("secrets", false, "include TOTP secrets")
		if err := fs.Parse(args); err != nil {
			return err
		}
		want := model.KeyStatus(*status)
		if *status != "" && !want.IsValid() {
			return fmt.Errorf("unknown status %q", *status)
		}
		keys, err := admin.ListKeys()
		if err != nil {
			return err
		}
		if *status != "" {
			keys = filterStatus(keys, want)
		}
		return printKeys(out, keys, *secrets)

	case "add":
		secret := fs.String("secret", "", "base32 TOTP secret (generated when empty)")
		maxUses := fs.Int("max-uses", 1, "usage limit, -1 for unlimited")
		if err := fs.Parse(args); err != nil {
			return err
		}
		key, err := admin.AddKey(dto.AddKeyRequest{Name: *name, Secret: *secret, MaxUses: *maxUses})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Added key %s (%s)\n", key.Name, limitText(key.MaxUses))
		fmt.Fprintf(out, "Secret: %s\n", key.Secret)
		return nil

	case "modify":
		maxUses := fs.Int("max-uses", 0, "new usage limit, -1 for unlimited")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := requireName(fs, *name); err != nil {
			return err
		}
		old, err := admin.ModifyUsage(dto.ModifyUsageRequest{Name: *name, MaxUses: *maxUses})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Key %s: limit changed from %s to %s\n", *name, limitText(old), limitText(*maxUses))
		return nil

	case "reset":
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := requireName(fs, *name); err != nil {
			return err
		}
		old, err := admin.ResetUsage(*name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Key %s: usage count reset from %d to 0\n", *name, old)
		return nil

	case "info":
		secrets := fs.Bool("secrets", false, "include the TOTP secret")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := requireName(fs, *name); err != nil {
			return err
		}
		key, err := admin.GetKey(*name)
		if err != nil {
			return err
		}
		printKeyInfo(out, key, *secrets)
		return nil

	case "verify":
		code := fs.String("code", "", "code shown by the authenticator")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := requireName(fs, *name); err != nil {
			return err
		}
		if *code == "" {
			fmt.Fprintln(fs.Output(), "Error: -code is required for verify.")
			fs.Usage()
			return errUsage
		}
		ok, err := admin.VerifyCode(*name, *code)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("code %s does not match key %s", *code, *name)
		}
		fmt.Fprintf(out, "Code matches key %s\n", *name)
		return nil

	case "delete":
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := requireName(fs, *name); err != nil {
			return err
		}
		if err := admin.DeleteKey(*name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted key %s\n", *name)
		return nil

	case "qr":
		path := fs.String("out", "", "PNG output path (default <name>.png)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := requireName(fs, *name); err != nil {
			return err
		}
		png, err := admin.QRCode(*name)
		if err != nil {
			return err
		}
		if *path == "" {
			*path = *name + ".png"
		}
		if err := os.WriteFile(*path, png, 0o600); err != nil {
			return fmt.Errorf("write QR code: %w", err)
		}
		fmt.Fprintf(out, "QR code written to %s\n", *path)
		return nil

	case "import":
		path := fs.String("file", "keys.json", "keys file to import")
		if err := fs.Parse(args); err != nil {
			return err
		}
		res, err := seeder.SeedKeys(admin, *path, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Imported %d keys, skipped %d existing\n", res.Imported, res.Skipped)
		return nil

	case "export":
		path := fs.String("file", "", "destination file (default stdout)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		keys, err := admin.ListKeys()
		if err != nil {
			return err
		}
		if *path == "" {
			return seeder.ExportKeys(out, keys)
		}
		f, err := os.OpenFile(*path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		if err := seeder.ExportKeys(f, keys); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d keys to %s\n", len(keys), *path)
		return nil
	}

	help()
	return fmt.Errorf("unknown command %q", cmd)
}

func limitText(maxUses int) string {
	if maxUses == model.UnlimitedUses {
		return "unlimited"
	}
	return fmt.Sprintf("%d uses", maxUses)
}

func filterStatus(keys []model.AccessKey, status model.KeyStatus) []model.AccessKey {
	out := keys[:0]
	for _, k := range keys {
		if k.Status() == status {
			out = append(out, k)
		}
	}
	return out
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Format(time.DateTime)
}

func remainingText(k model.AccessKey) string {
	if k.Unlimited() {
		return "unlimited"
	}
	return fmt.Sprint(k.RemainingUses())
}

func printKeys(out io.Writer, keys []model.AccessKey, withSecrets bool) error {
	if len(keys) == 0 {
		fmt.Fprintln(out, "No keys found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "NAME\tUSED\tLIMIT\tREMAINING\tSTATUS\tLAST USED"
	if withSecrets {
		header += "\tSECRET"
	}
	fmt.Fprintln(w, header)
	for _, k := range keys {
		limit := "unlimited"
		if !k.Unlimited() {
			limit = fmt.Sprint(k.MaxUses)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s", k.Name, k.UsageCount, limit, remainingText(k), k.Status(), formatTime(k.LastUsedAt))
		if withSecrets {
			fmt.Fprintf(w, "\t%s", k.Secret)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func printKeyInfo(out io.Writer, k *model.AccessKey, withSecret bool) {
	fmt.Fprintf(out, "Key:         %s\n", k.Name)
	fmt.Fprintf(out, "Status:      %s\n", k.Status())
	fmt.Fprintf(out, "Usage:       %d / %s\n", k.UsageCount, limitText(k.MaxUses))
	fmt.Fprintf(out, "Remaining:   %s\n", remainingText(*k))
	fmt.Fprintf(out, "Created:     %s\n", formatTime(&k.CreatedAt))
	fmt.Fprintf(out, "Last used:   %s\n", formatTime(k.LastUsedAt))
	if withSecret {
		fmt.Fprintf(out, "Secret:      %s\n", k.Secret)
	}
}
