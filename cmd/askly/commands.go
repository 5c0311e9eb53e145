// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/questions"
	"github.com/taibuivan/askly/internal/users/auth"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"whoami":   {usage: "show the current identity", run: whoami},
	"login":    {usage: "-email E -password P: sign in", run: login},
	"register": {usage: "-name N -email E -password P [-confirm P]: create an account", run: register},
	"guest":    {usage: "continue as a guest (3 questions, not saved between runs)", run: guest},
	"logout":   {usage: "sign out and forget the saved session", run: logout},
	"ask":      {usage: "<question...>: ask a question", run: ask},
	"history":  {usage: "[-page N] [-limit N]: list previous questions", run: history},
	"forgot":   {usage: "-email E: send a password reset email", run: forgot},
	"reset":    {usage: "-token T -password P [-confirm P]: set a new password", run: reset},
	"serve":    {usage: "run the local web console", run: serve},
}

func usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stderr, "usage: askly <command> [flags]")
	fmt.Fprintln(os.Stderr)
	w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, commands[name].usage)
	}
	_ = w.Flush()
}

// errUsage reports malformed flags; the flag package already printed why.
var errUsage = errors.New("invalid arguments")

func parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// # Session Commands

func whoami(_ context.Context, a *app, args []string) error {
	if err := parse(flag.NewFlagSet("whoami", flag.ContinueOnError), args); err != nil {
		return err
	}
	printIdentity(a.out, a.sessions.Current())
	return nil
}

func login(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := parse(fs, args); err != nil {
		return err
	}

	identity, err := a.sessions.Login(ctx, auth.LoginInput{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	printIdentity(a.out, identity)
	return nil
}

func register(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	confirm := fs.String("confirm", "", "password confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}

	identity, err := a.sessions.Register(ctx, auth.RegisterInput{
		Name:            *name,
		Email:           *email,
		Password:        *password,
		PasswordConfirm: *confirm,
	})
	if err != nil {
		return err
	}
	printIdentity(a.out, identity)
	return nil
}

func guest(ctx context.Context, a *app, args []string) error {
	if err := parse(flag.NewFlagSet("guest", flag.ContinueOnError), args); err != nil {
		return err
	}

	identity, err := a.sessions.ContinueAsGuest(ctx)
	if err != nil {
		return err
	}
	printIdentity(a.out, identity)
	return nil
}

func logout(ctx context.Context, a *app, args []string) error {
	if err := parse(flag.NewFlagSet("logout", flag.ContinueOnError), args); err != nil {
		return err
	}
	a.sessions.Logout(ctx)
	return nil
}

func forgot(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("forgot", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := parse(fs, args); err != nil {
		return err
	}
	return a.sessions.RequestPasswordReset(ctx, *email)
}

func reset(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	token := fs.String("token", "", "token from the reset email")
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "password confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}

	return a.sessions.ResetPassword(ctx, auth.ResetPasswordInput{
		Token:           *token,
		Password:        *password,
		PasswordConfirm: *confirm,
	})
}

// # Question Commands

func ask(ctx context.Context, a *app, args []string) error {
	exchange, err := a.questions.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, exchange.Answer)
	if identity := a.sessions.Current(); identity != nil {
		fmt.Fprintf(a.errOut, "%d questions remaining\n", identity.Subscription.QuestionsRemaining)
	}
	return nil
}

func history(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	page := fs.Int("page", constants.DefaultHistoryPage, "page number")
	limit := fs.Int("limit", constants.DefaultHistoryLimit, "questions per page")
	if err := parse(fs, args); err != nil {
		return err
	}

	result, err := a.questions.FetchHistory(ctx, *page, *limit)
	if err != nil {
		return err
	}
	printHistory(a.out, result)
	return nil
}

// # Output

func printIdentity(w io.Writer, identity *auth.Identity) {
	if identity == nil {
		fmt.Fprintln(w, "Not signed in. Run `askly login` or `askly guest`.")
		return
	}

	sub := identity.Subscription
	fmt.Fprintf(w, "%s <%s>\n", identity.Name, identity.Email)
	fmt.Fprintf(w, "  role:      %s\n", identity.Role)
	fmt.Fprintf(w, "  plan:      %s\n", sub.Plan)
	fmt.Fprintf(w, "  questions: %d of %d remaining\n", sub.QuestionsRemaining, sub.QuestionLimit())
	if sub.ExpiresAt != nil {
		fmt.Fprintf(w, "  renews:    %s\n", sub.ExpiresAt.Format(time.DateOnly))
	}
}

func printHistory(w io.Writer, page *questions.HistoryPage) {
	if len(page.Questions) == 0 {
		fmt.Fprintln(w, "No questions yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, exchange := range page.Questions {
		fmt.Fprintf(tw, "%s\t%s\n", exchange.CreatedAt.Format(time.DateTime), exchange.Question)
		fmt.Fprintf(tw, "\t%s\n", firstLine(exchange.Answer))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "page %d of %d (%d total)\n", page.Page, page.TotalPages, page.Total)
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return line
}
