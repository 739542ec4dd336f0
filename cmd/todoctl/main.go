// Command todoctl is a terminal frontend for the taskdeck API built on the
// client view-model. Authentication state is carried in the TASKDECK_TOKEN
// environment variable; the fetched list is cached locally in bbolt.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/taskdeck/backend/client"
	"github.com/taskdeck/backend/domain"
)

const usage = `usage: todoctl <command> [arguments]

commands:
  signup -email E -name N -password P   register and print a token
  login  -email E -password P           sign in and print a token
  list   [-filter all|active|completed] show todos
  add    <title>                        create a todo
  done   <id>                           mark a todo completed
  undo   <id>                           mark a todo active
  rename <id> <title>                   change a todo's title
  rm     <id>                           delete a todo
  clear                                 delete all completed todos
  counts                                show active/completed tallies

environment:
  TASKDECK_ADDR   API base URL (default http://localhost:8080)
  TASKDECK_TOKEN  bearer token printed by signup/login
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	api := client.New(envOr("TASKDECK_ADDR", "http://localhost:8080"), nil)
	api.SetToken(os.Getenv("TASKDECK_TOKEN"))

	if err := run(ctx, api, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "todoctl:", errorText(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, api *client.Client, command string, args []string) error {
	switch command {
	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		name := fs.String("name", "", "display name")
		password := fs.String("password", "", "password")
		fs.Parse(args)

		user, err := api.SignUp(ctx, *email, *name, *password)
		if err != nil {
			return err
		}
		fmt.Printf("registered %s\nexport TASKDECK_TOKEN=%s\n", user.Email, api.Token())
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		fs.Parse(args)

		user, err := api.SignIn(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s\nexport TASKDECK_TOKEN=%s\n", user.Email, api.Token())
		return nil
	}

	// Everything below needs an authenticated view-model.
	vm, cache, err := newViewModel(ctx, api)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	switch command {
	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		filter := fs.String("filter", "all", "all, active or completed")
		fs.Parse(args)

		if err := vm.SetFilter(client.Filter(*filter)); err != nil {
			return err
		}
		if err := vm.Refresh(ctx); err != nil {
			return err
		}
		for _, todo := range vm.Visible() {
			mark := " "
			if todo.Completed {
				mark = "x"
			}
			fmt.Printf("[%s] %s  %s\n", mark, todo.ID, todo.Title)
		}
		return nil

	case "add":
		if len(args) < 1 {
			return domain.NewError(domain.ErrCodeInvalid, "add needs a title")
		}
		return vm.Add(ctx, args[0])

	case "done", "undo":
		if len(args) < 1 {
			return domain.NewError(domain.ErrCodeInvalid, command+" needs a todo id")
		}
		return vm.SetCompleted(ctx, args[0], command == "done")

	case "rename":
		if len(args) < 2 {
			return domain.NewError(domain.ErrCodeInvalid, "rename needs a todo id and a title")
		}
		return vm.Rename(ctx, args[0], args[1])

	case "rm":
		if len(args) < 1 {
			return domain.NewError(domain.ErrCodeInvalid, "rm needs a todo id")
		}
		return vm.Remove(ctx, args[0])

	case "clear":
		return vm.ClearCompleted(ctx)

	case "counts":
		if err := vm.Refresh(ctx); err != nil {
			return err
		}
		counts := vm.Counts()
		fmt.Printf("active: %d\ncompleted: %d\n", counts.Active, counts.Completed)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return domain.NewError(domain.ErrCodeInvalid, "unknown command "+command)
	}
}

func newViewModel(ctx context.Context, api *client.Client) (*client.ViewModel, *client.Cache, error) {
	if api.Token() == "" {
		return nil, nil, domain.ErrUnauthorized
	}

	user, err := api.Me(ctx)
	if err != nil {
		return nil, nil, err
	}

	cache, err := client.OpenCache(cachePath(), 5*time.Minute)
	if err != nil {
		// A broken local cache should not block the CLI.
		cache = nil
	}
	_ = cache.Sweep()
	return client.NewViewModel(api, cache, user.ID), cache, nil
}

func cachePath() string {
	if path := os.Getenv("TASKDECK_CACHE"); path != "" {
		return path
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "taskdeck", "todos.db")
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
