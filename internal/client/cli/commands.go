package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/factshare/internal/client/backup"
	"github.com/dmitrijs2005/factshare/internal/client/models"
	"github.com/dmitrijs2005/factshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/factshare/internal/client/services"
	"github.com/dmitrijs2005/factshare/internal/common"
)

func (a *App) Share(ctx context.Context, args []string) error {
	path := a.config.ProfilePath
	if len(args) > 0 {
		path = args[0]
	}

	profile, err := services.LoadProfile(path)
	if err != nil {
		printlnFn("Cannot read profile:", err)
		return err
	}

	res, err := a.share.Share(ctx, profile)
	if err != nil {
		printlnFn("Share failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "Link:  %s\n", res.Link)
	if res.Short {
		fmt.Fprintf(a.out, "Valid until %s\n", res.ExpiresAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(a.out, "Token (%d chars, %d facts):\n%s\n", res.Length, res.Facts, res.Token)
	if res.Oversize {
		printlnFn("Warning: this code is large and may not scan reliably. Share fewer facts or use the link.")
	}
	return nil
}

func (a *App) Scan(ctx context.Context, args []string) error {
	raw := strings.Join(args, " ")
	if raw == "" {
		var err error
		raw, err = readLine(a.lines, "Paste the scanned text or link", a.out, a.prompt)
		if err != nil {
			return err
		}
	}

	res, err := a.scan.Scan(ctx, raw)
	if err != nil {
		a.log.Debug(ctx, "scan failed", "error", err)
		printlnFn(services.ScanMessage(err))
		return err
	}

	switch {
	case res.WasCreated:
		printlnFn(fmt.Sprintf("New contact %s with %d facts.", display(res.Contact), res.AddedFacts))
	case res.AddedFacts > 0:
		printlnFn(fmt.Sprintf("Updated %s: %d new facts.", display(res.Contact), res.AddedFacts))
	default:
		printlnFn(fmt.Sprintf("%s is up to date.", display(res.Contact)))
	}
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.contacts.List(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	if len(list) == 0 {
		printlnFn("No contacts yet. Use 'scan' to add one.")
		return nil
	}
	for _, c := range list {
		fmt.Fprintf(a.out, "%-8.8s  %-24s  %3d facts  updated %s\n",
			c.ID, display(c), c.FactCount(), c.LastUpdated.Local().Format(time.DateOnly))
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: show <id>")
		return common.ErrorValidation
	}

	c, err := a.contacts.Find(ctx, args[0])
	if errors.Is(err, common.ErrorNotFound) {
		printlnFn("No such contact:", args[0])
		return err
	}
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", display(*c), c.ID)
	for _, line := range [][2]string{{"Phone", c.Phone}, {"Telegram", c.Telegram}, {"Instagram", c.Instagram}, {"Avatar", c.Avatar}} {
		if line[1] != "" {
			fmt.Fprintf(a.out, "  %-10s %s\n", line[0]+":", line[1])
		}
	}
	fmt.Fprintf(a.out, "  Met %s, updated %s\n",
		c.ConnectedAt.Local().Format(time.DateTime), c.LastUpdated.Local().Format(time.DateTime))
	for _, g := range c.Groups {
		fmt.Fprintf(a.out, "  [%s]\n", g.Name)
		for _, f := range g.Facts {
			fmt.Fprintf(a.out, "    - %s\n", f.Text)
		}
	}
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	owner, err := a.share.OwnerID(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	key, err := a.contacts.Backup(ctx, owner)
	if errors.Is(err, backup.ErrDisabled) {
		printlnFn("Backups are off. Set a bucket with -b or in the config file.")
		return err
	}
	if err != nil {
		printlnFn("Backup failed:", err)
		return err
	}
	printlnFn("Backup written to", key)
	return nil
}

func (a *App) Forget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: forget <id>")
		return common.ErrorValidation
	}

	c, err := a.contacts.Forget(ctx, args[0])
	if errors.Is(err, common.ErrorNotFound) {
		printlnFn("No such contact:", args[0])
		return err
	}
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn("Forgot", display(*c))
	return nil
}

func (a *App) Restore(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: restore <backup key>")
		return common.ErrorValidation
	}

	n, err := a.contacts.Restore(ctx, args[0])
	switch {
	case errors.Is(err, backup.ErrDisabled):
		printlnFn("Backups are off. Set a bucket with -b or in the config file.")
		return err
	case errors.Is(err, backup.ErrSealed):
		printlnFn("This backup is sealed. Set the passphrase in the config file.")
		return err
	case err != nil:
		printlnFn("Restore failed:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Restored %d contacts from %s.", n, args[0]))
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	settings, err := a.share.Settings(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn(settings[metadata.KeyOwnerID])
	if last := settings[metadata.KeyLastBackup]; last != "" {
		printlnFn("Last backup:", last)
	}
	return nil
}

func display(c models.Contact) string {
	if c.Name != "" {
		return c.Name
	}
	return c.RemoteID
}
