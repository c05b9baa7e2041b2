package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

func (a *App) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		v, err := a.prompt("Email: ")
		if err != nil {
			return err
		}
		*email = v
	}
	fmt.Fprint(a.Out, "Password: ")
	password, err := a.ReadPassword()
	fmt.Fprintln(a.Out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	session, err := a.auth.Login(ctx, Namespace, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Signed in as %s\n", session.Email)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "full name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprint(a.Out, "Password: ")
	password, err := a.ReadPassword()
	fmt.Fprintln(a.Out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	session, err := a.auth.Register(ctx, Namespace, transfer.RegisterRequest{
		Email:    *email,
		Password: password,
		FullName: *name,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Registered and signed in as %s\n", session.Email)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx, Namespace); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "Signed out")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	session, err := a.auth.Current(ctx, Namespace)
	if errors.Is(err, repository.ErrNoSession) {
		return ErrNotSignedIn
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s <%s>\n", session.FullName, session.Email)
	return nil
}
