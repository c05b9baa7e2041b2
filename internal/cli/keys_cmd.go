package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/maheshrc27/postflow-studio/internal/models"
)

func (a *App) apiKey(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	set := fs.String("set", "", "new API key")
	provider := fs.String("provider", "", "AI provider (default openai)")
	remove := fs.Bool("delete", false, "remove the saved key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := a.workspace(ctx)
	if err != nil {
		return err
	}

	if *remove {
		if _, err := a.keys.Delete(ctx, ws); err != nil {
			return err
		}
		fmt.Fprintln(a.Out, "API key removed")
		return nil
	}

	view, err := a.keys.Load(ctx, ws)
	if err != nil {
		return err
	}
	if *set == "" && *provider == "" {
		a.printKey(view)
		return nil
	}

	next := models.APIKeySettings{Provider: view.Provider, APIKey: view.APIKey}
	if *provider != "" {
		next.Provider = *provider
	}
	if *set != "" {
		next.APIKey = *set
	}
	a.keys.Edit(ws, next)

	saved, view, err := a.keys.Save(ctx, ws)
	if err != nil {
		return err
	}
	if !saved {
		fmt.Fprintln(a.Out, "No changes to save")
		return nil
	}
	fmt.Fprintln(a.Out, "API key saved")
	a.printKey(view)
	return nil
}

func (a *App) printKey(v models.APIKeyFormView) {
	if !v.HasKey {
		fmt.Fprintf(a.Out, "%s: no key saved\n", v.Provider)
		return
	}
	fmt.Fprintf(a.Out, "%s: %s\n", v.Provider, mask(v.APIKey))
}

func mask(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "…" + key[len(key)-4:]
}
