package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/pkg/browser"
)

// BrowserLauncher opens the authorization URL in the default browser.
type BrowserLauncher struct{}

func (BrowserLauncher) Launch(_ context.Context, attempt *models.ConnectAttempt) error {
	return browser.OpenURL(attempt.AuthURL)
}

func (a *App) accounts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("accounts", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	asJSON := fs.Bool("json", false, "print the directory as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := a.workspace(ctx)
	if err != nil {
		return err
	}
	dir := ws.Directory()

	if *asJSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(dir)
	}
	if len(dir.Accounts) == 0 {
		fmt.Fprintln(a.Out, "No connected accounts")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLATFORM\tNAME\tCONNECTED")
	for _, acc := range dir.Accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", acc.ID, acc.PlatformName, acc.DisplayName(), acc.Connected)
	}
	return w.Flush()
}

// connectAccount opens the authorization page and waits until the new
// account shows up in the directory.
func (a *App) connectAccount(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	platform := fs.String("platform", "", "facebook, instagram or youtube")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := a.workspace(ctx)
	if err != nil {
		return err
	}

	attempt, err := a.connect.Start(ctx, ws, models.Platform(*platform))
	if err != nil {
		return err
	}
	if attempt.Done() {
		fmt.Fprintf(a.Out, "%s\nOpen this URL to continue: %s\n", attempt.Message, attempt.AuthURL)
		return nil
	}
	fmt.Fprintf(a.Out, "%s\nIf no browser opened, visit: %s\n", attempt.Message, attempt.AuthURL)

	done, err := a.connect.Watch(ctx, attempt.ID, ws.Token())
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, done.Message)
	if done.State != models.ConnectValid {
		return fmt.Errorf("connect %s: %s", *platform, done.State)
	}
	return nil
}

func (a *App) disconnect(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: postctl disconnect <account-id>")
	}
	ws, err := a.workspace(ctx)
	if err != nil {
		return err
	}
	name := args[0]
	if acc, ok := ws.Directory().Lookup(args[0]); ok {
		name = acc.DisplayName()
	}
	if err := a.directory.Disconnect(ctx, ws, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Disconnected %s\n", name)
	return nil
}
