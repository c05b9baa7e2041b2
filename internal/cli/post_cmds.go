package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/service"
	"google.golang.org/api/youtube/v3"
)

func (a *App) listHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	status := fs.String("status", "", "published or unpublished; both when empty")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", service.DefaultPageSize, "posts per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := a.workspace(ctx)
	if err != nil {
		return err
	}

	if *status != "" {
		kind := models.PostListKind(strings.ToLower(*status))
		if !kind.Valid() {
			return fmt.Errorf("status must be published or unpublished")
		}
		p, err := a.history.Page(ctx, ws, kind, *page, *limit)
		if err != nil {
			return err
		}
		a.printPage(p)
		return nil
	}

	hist := a.history.List(ctx, ws, service.HistoryQuery{PublishedPage: *page, UnpublishedPage: *page, Limit: *limit})
	a.printPage(hist.Unpublished)
	fmt.Fprintln(a.Out)
	a.printPage(hist.Published)
	return nil
}

func (a *App) printPage(p models.PostPage) {
	fmt.Fprintf(a.Out, "%s (page %d, %d total)\n", strings.ToUpper(string(p.Kind)), p.Page, p.Total)
	if p.Error != "" {
		fmt.Fprintf(a.Out, "  could not load: %s\n", p.Error)
		return
	}
	if len(p.Posts) == 0 {
		fmt.Fprintln(a.Out, "  no posts")
		return
	}
	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tACCOUNT\tPLATFORM\tSTATUS\tSCHEDULED")
	for _, post := range p.Posts {
		status := string(post.Status)
		if post.Overdue {
			status += " (overdue)"
		}
		when := "-"
		if !post.ScheduledAt.IsZero() {
			when = post.ScheduledAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", post.ID, post.AccountName, post.Platform, status, when)
	}
	w.Flush()
}

func (a *App) deletePost(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: postctl delete-post <post-id>")
	}
	ws, err := a.workspace(ctx)
	if err != nil {
		return err
	}
	if err := a.history.Delete(ctx, ws, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Deleted post %s\n", args[0])
	return nil
}

func (a *App) preview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	prompt := fs.String("prompt", "", "what the post is about")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := a.workspace(ctx)
	if err != nil {
		return err
	}
	err = ws.WithComposer(func(c *service.Composer) error {
		c.SetPrompt(*prompt)
		return nil
	})
	if err != nil {
		return err
	}
	view, err := a.composer.Generate(ctx, ws)
	if err != nil {
		return err
	}
	a.printBoxes(view.Draft.Boxes)
	return nil
}

func (a *App) printBoxes(b models.ContentBoxes) {
	fmt.Fprintf(a.Out, "Short video: %s\n", b.ShortVideo.Caption)
	fmt.Fprintf(a.Out, "Long video:  %s\n", b.LongVideo.Caption)
	if b.YouTube != nil {
		fmt.Fprintf(a.Out, "YouTube:     %s\n             %s\n", b.YouTube.Title, b.YouTube.Description)
	}
}

type scheduleFlags struct {
	prompt      string
	caption     string
	short       string
	title       string
	description string
	at          string
	confirm     bool
	media       listFlag
	accounts    listFlag
	types       listFlag
	ctas        listFlag
}

func (a *App) schedule(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	var f scheduleFlags
	fs.StringVar(&f.prompt, "prompt", "", "generate captions from this prompt first")
	fs.StringVar(&f.caption, "caption", "", "long video / page post caption")
	fs.StringVar(&f.short, "short", "", "short video caption")
	fs.StringVar(&f.title, "title", "", "YouTube title")
	fs.StringVar(&f.description, "description", "", "YouTube description")
	fs.StringVar(&f.at, "at", "", "when to publish: RFC 3339, 2006-01-02T15:04 or +duration")
	fs.BoolVar(&f.confirm, "yes", false, "skip accounts the media is not compatible with")
	fs.Var(&f.media, "media", "file to attach (repeatable)")
	fs.Var(&f.accounts, "account", "account id to target (repeatable)")
	fs.Var(&f.types, "type", "account=post-type (repeatable)")
	fs.Var(&f.ctas, "cta", "account=call to action (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := a.workspace(ctx)
	if err != nil {
		return err
	}
	// Staged media is released whether or not the post goes through.
	defer a.composer.Reset(context.Background(), ws)

	if err := a.stageFiles(ctx, ws, f.media); err != nil {
		return err
	}
	if f.prompt != "" {
		err := ws.WithComposer(func(c *service.Composer) error {
			c.SetPrompt(f.prompt)
			return nil
		})
		if err != nil {
			return err
		}
		if _, err := a.composer.Generate(ctx, ws); err != nil {
			return err
		}
	}
	if err := a.fillDraft(ws, f); err != nil {
		return err
	}

	result, err := a.composer.Submit(ctx, ws, f.confirm)
	var incompatible *service.IncompatibleMediaError
	if errors.As(err, &incompatible) {
		for _, is := range incompatible.Issues {
			fmt.Fprintf(a.Out, "%s: %s\n", is.AccountName, strings.Join(is.Reasons, "; "))
		}
		return fmt.Errorf("media is not compatible with every account, rerun with -yes to skip them")
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "%s (%d entries)\n", result.Message, result.Entries)
	for _, name := range result.Excluded {
		fmt.Fprintf(a.Out, "  skipped %s\n", name)
	}
	return nil
}

func (a *App) stageFiles(ctx context.Context, ws *service.Workspace, paths []string) error {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		item, err := a.media.Stage(ctx, ws.SessionID, info.Name(), f, info.Size())
		f.Close()
		if err != nil {
			return err
		}
		err = ws.WithComposer(func(c *service.Composer) error {
			c.AttachMedia(item)
			return nil
		})
		if err != nil {
			a.media.Discard(ctx, item)
			return err
		}
	}
	return nil
}

func (a *App) fillDraft(ws *service.Workspace, f scheduleFlags) error {
	types, err := f.types.pairs()
	if err != nil {
		return err
	}
	ctas, err := f.ctas.pairs()
	if err != nil {
		return err
	}
	var when time.Time
	if f.at != "" {
		if when, err = parseWhen(f.at, time.Now()); err != nil {
			return err
		}
	}

	return ws.WithComposer(func(c *service.Composer) error {
		if f.caption != "" {
			if err := c.EditCaption(models.ContentLongVideo, models.CaptionBox{Caption: f.caption}); err != nil {
				return err
			}
		}
		if f.short != "" {
			if err := c.EditCaption(models.ContentShortVideo, models.CaptionBox{Caption: f.short}); err != nil {
				return err
			}
		}
		if f.title != "" || f.description != "" {
			if err := c.EditYouTube(youtube.VideoSnippet{Title: f.title, Description: f.description}); err != nil {
				return err
			}
		}
		for _, id := range f.accounts {
			if _, err := c.ToggleAccount(id); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
		}
		for id, list := range types {
			for _, t := range list {
				if _, err := c.TogglePostType(id, t); err != nil {
					return fmt.Errorf("%s %s: %w", id, t, err)
				}
			}
		}
		for id, list := range ctas {
			if err := c.SetCallToAction(id, list[len(list)-1]); err != nil {
				return err
			}
		}
		if !when.IsZero() {
			return c.SetScheduledTime(when)
		}
		return nil
	})
}
