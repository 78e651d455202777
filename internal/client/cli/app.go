// Package cli implements the credctl command: a small operator tool for
// registering accounts, confirming tokens, and checking credentials
// against a running credkeeper server.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/avetisov/credkeeper/internal/common"

	"github.com/avetisov/credkeeper/internal/client/api"
	"github.com/avetisov/credkeeper/internal/client/config"
)

type App struct {
	api *api.Client
	in  *bufio.Reader
	out io.Writer
}

func NewApp(cfg *config.Config) *App {
	return &App{
		api: api.NewClient(cfg.ServerURL),
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

// Run dispatches on the first non-flag argument: register, confirm,
// login, or refresh.
func (a *App) Run(ctx context.Context, command string) error {
	switch command {
	case "register":
		return a.register(ctx)
	case "confirm":
		return a.confirm(ctx)
	case "login":
		return a.login(ctx)
	case "refresh":
		return a.refresh(ctx)
	default:
		return fmt.Errorf("unknown command %q (expected register, confirm, login, or refresh)", command)
	}
}

func (a *App) register(ctx context.Context) error {
	firstName, err := GetSimpleText(a.in, "Enter first name", a.out)
	if err != nil {
		return err
	}
	lastName, err := GetSimpleText(a.in, "Enter last name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.api.Register(ctx, firstName, lastName, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registration accepted, check your mail for the confirmation link.")
	fmt.Fprintf(a.out, "Confirmation token: %s\n", token)
	return nil
}

func (a *App) confirm(ctx context.Context) error {
	token, err := GetSimpleText(a.in, "Enter confirmation token", a.out)
	if err != nil {
		return err
	}

	if err := a.api.Confirm(ctx, token); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account activated.")
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := GetSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.printTokens(res)
	return nil
}

func (a *App) refresh(ctx context.Context) error {
	token, err := GetSimpleText(a.in, "Enter refresh token", a.out)
	if err != nil {
		return err
	}

	res, err := a.api.Refresh(ctx, token)
	if err != nil {
		return err
	}

	a.printTokens(res)
	return nil
}

func (a *App) printTokens(res *api.AuthResult) {
	fmt.Fprintf(a.out, "Access token:  %s\n", res.AccessToken)
	fmt.Fprintf(a.out, "Refresh token: %s\n", res.RefreshToken)
}
