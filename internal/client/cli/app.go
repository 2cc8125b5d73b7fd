// Package cli implements the interactive command loop of the KeyWarden
// client. It is a thin shell over the api.Client: credentials are read from
// the terminal, sent to the server, and only the bearer token is kept in
// memory for the duration of the session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/keywarden/internal/client/api"
	"github.com/dmitrijs2005/keywarden/internal/client/config"
	"github.com/dmitrijs2005/keywarden/internal/common"
)

type App struct {
	config   *config.Config
	client   *api.Client
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		client: api.NewClient(c.ServerEndpointAddr, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	return a.client.Token() != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}

// Run starts the read-eval-print loop. It exits on EOF or when the user
// types "exit" or "quit".
func (a *App) Run(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to KeyWarden CLI (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "kwcli %s> ", a.getStatus())

		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: list, add, rename <id>, delete <id>, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: register, login, exit")
			}
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.logout(ctx)
		case "list":
			a.list(ctx)
		case "add":
			a.add(ctx)
		case "rename":
			a.rename(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return "", nil, err
	}

	return userName, password, nil
}

func (a *App) register(ctx context.Context) {
	userName, password, err := a.readCredentials()
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, userName, password); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			fmt.Fprintln(a.out, "Username is already taken")
		} else {
			fmt.Fprintf(a.out, "Registration unsuccessful: %v\n", err)
		}
		return
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Registration successful")
}

func (a *App) login(ctx context.Context) {
	userName, password, err := a.readCredentials()
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, userName, password); err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		return
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Login successful")
}

func (a *App) logout(ctx context.Context) {
	if err := a.client.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout unsuccessful: %v\n", err)
		return
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) list(ctx context.Context) {
	courses, err := a.client.ListCourses(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if len(courses) == 0 {
		fmt.Fprintln(a.out, "No courses yet")
		return
	}
	for _, c := range courses {
		fmt.Fprintf(a.out, "%4d  %s\n", c.ID, c.Name)
	}
}

func (a *App) add(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Enter course name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	id, err := a.client.CreateCourse(ctx, name)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Created course %d\n", id)
}

func (a *App) rename(ctx context.Context, args []string) {
	id, ok := parseID(a.out, args, "rename")
	if !ok {
		return
	}

	name, err := GetSimpleText(a.reader, "Enter new name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if err := a.client.RenameCourse(ctx, id, name); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Renamed")
}

func (a *App) delete(ctx context.Context, args []string) {
	id, ok := parseID(a.out, args, "delete")
	if !ok {
		return
	}

	if err := a.client.DeleteCourse(ctx, id); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Deleted")
}

func parseID(w io.Writer, args []string, cmd string) (int64, bool) {
	if len(args) == 0 {
		fmt.Fprintf(w, "Usage: %s <id>\n", cmd)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintln(w, "Invalid id:", args[0])
		return 0, false
	}
	return id, true
}
