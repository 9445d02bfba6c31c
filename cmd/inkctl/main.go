// Command inkctl drives an inkwell server from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"inkwell/internal/editor"
	"inkwell/internal/template"
	"inkwell/pkg/client"
	"inkwell/pkg/logger"
)

const usage = `usage: inkctl [-url URL] [-token TOKEN] <command> [args]

commands:
  signup <email> <password>        create an account and print its access token
  signin <email> <password>        sign in and print an access token
  list                             list your documents
  show <docId>                     print a document
  new [-template name] <title>     create a document (content from stdin unless a template is given)
  improve <docId>                  rewrite a document with the AI assistant and save it
  ask <docId> <question>           ask the AI assistant about a document
  versions <docId>                 list saved versions, newest first
  snapshot <docId>                 save the current document as a version
  restore [-save] <docId> <versionId>
                                   print a version restored into the editor, saving it with -save
  export [-o dir] <docId>          download a document as a .txt file
  templates                        list starter templates
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "inkctl:", err)
		logger.Sync()
		os.Exit(1)
	}
}

type cli struct {
	api    *client.Client
	stdin  io.Reader
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("inkctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	baseURL := fs.String("url", envOr("INKWELL_URL", "http://localhost:8080"), "server base URL")
	tok := fs.String("token", os.Getenv("INKWELL_TOKEN"), "access token")
	verbose := fs.Bool("v", false, "log requests")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if *verbose {
		logger.Init("debug")
	}
	if fs.NArg() == 0 {
		return errors.New(usage)
	}

	c := &cli{api: client.New(*baseURL, nil), stdin: stdin, stdout: stdout}
	c.api.SetToken(*tok)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	logger.Sugar.Debugf("Running %s against %s", cmd, *baseURL)
	switch cmd {
	case "signup", "signin":
		return c.auth(ctx, cmd, rest)
	case "list":
		return c.list(ctx)
	case "show":
		return c.show(ctx, rest)
	case "new":
		return c.create(ctx, rest)
	case "improve":
		return c.improve(ctx, rest)
	case "ask":
		return c.ask(ctx, rest)
	case "versions":
		return c.versions(ctx, rest)
	case "snapshot":
		return c.snapshot(ctx, rest)
	case "restore":
		return c.restore(ctx, rest)
	case "export":
		return c.export(ctx, rest)
	case "templates":
		return c.templates(ctx)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func need(args []string, n int, what string) error {
	if len(args) < n {
		return fmt.Errorf("missing arguments: %s", what)
	}
	return nil
}

func (c *cli) editor() *editor.Controller {
	return editor.New(c.api, c.api, c.api)
}

func (c *cli) auth(ctx context.Context, cmd string, args []string) error {
	if err := need(args, 2, "<email> <password>"); err != nil {
		return err
	}
	signIn := c.api.SignIn
	if cmd == "signup" {
		signIn = c.api.SignUp
	}
	resp, err := signIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "export INKWELL_TOKEN=%s\n", resp.AccessToken)
	if resp.RefreshToken != "" {
		fmt.Fprintf(c.stdout, "# refresh token: %s\n", resp.RefreshToken)
	}
	return nil
}

func (c *cli) list(ctx context.Context) error {
	docs, err := c.api.ListDocuments(ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		fmt.Fprintf(c.stdout, "%s\t%s\t%s\t%s\n", d.ID, d.UpdatedAt.Format("2006-01-02 15:04"), d.Title, d.Snippet)
	}
	return nil
}

func (c *cli) show(ctx context.Context, args []string) error {
	if err := need(args, 1, "<docId>"); err != nil {
		return err
	}
	ed := c.editor()
	if err := ed.Load(ctx, args[0]); err != nil {
		return err
	}
	v := ed.View()
	fmt.Fprintf(c.stdout, "# %s\n\n%s\n", v.Title, v.Content)
	return nil
}

func (c *cli) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	tpl := fs.String("template", "", "starter template")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ed := c.editor()
	ed.SetTitle(strings.Join(fs.Args(), " "))
	if *tpl != "" {
		if err := ed.ApplyTemplate(template.Name(*tpl)); err != nil {
			return err
		}
	} else {
		body, err := io.ReadAll(c.stdin)
		if err != nil {
			return err
		}
		ed.SetContent(string(body))
	}
	if err := ed.Save(ctx); err != nil {
		return err
	}
	v := ed.View()
	fmt.Fprintf(c.stdout, "%s\n%s\n", v.Status, v.DocID)
	return nil
}

func (c *cli) improve(ctx context.Context, args []string) error {
	if err := need(args, 1, "<docId>"); err != nil {
		return err
	}
	ed := c.editor()
	if err := ed.Load(ctx, args[0]); err != nil {
		return err
	}
	if err := ed.Improve(ctx); err != nil {
		return err
	}
	if err := ed.Save(ctx); err != nil {
		return err
	}
	v := ed.View()
	fmt.Fprintf(c.stdout, "%s\n\n%s\n", v.AIMessage, v.Content)
	return nil
}

func (c *cli) ask(ctx context.Context, args []string) error {
	if err := need(args, 2, "<docId> <question>"); err != nil {
		return err
	}
	ed := c.editor()
	if err := ed.Load(ctx, args[0]); err != nil {
		return err
	}
	answer, err := ed.Ask(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, answer)
	return nil
}

func (c *cli) versions(ctx context.Context, args []string) error {
	if err := need(args, 1, "<docId>"); err != nil {
		return err
	}
	versions, err := c.api.ListVersions(ctx, args[0])
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Fprintf(c.stdout, "%s\t%s\t%s\n", v.ID, v.CreatedAt.Format("2006-01-02 15:04:05"), v.Title)
	}
	return nil
}

func (c *cli) snapshot(ctx context.Context, args []string) error {
	if err := need(args, 1, "<docId>"); err != nil {
		return err
	}
	ed := c.editor()
	if err := ed.Load(ctx, args[0]); err != nil {
		return err
	}
	if err := ed.SaveVersion(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, ed.View().Status)
	return nil
}

func (c *cli) restore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	save := fs.Bool("save", false, "save the restored content")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(fs.Args(), 2, "<docId> <versionId>"); err != nil {
		return err
	}

	ed := c.editor()
	if err := ed.Load(ctx, fs.Arg(0)); err != nil {
		return err
	}
	version, err := c.api.GetVersion(ctx, fs.Arg(1))
	if err != nil {
		return err
	}
	if err := ed.RestoreVersion(ctx, version); err != nil {
		return err
	}
	if *save {
		if err := ed.Save(ctx); err != nil {
			return err
		}
	}
	v := ed.View()
	fmt.Fprintf(c.stdout, "%s\n\n# %s\n\n%s\n", v.Status, v.Title, v.Content)
	return nil
}

func (c *cli) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dir := fs.String("o", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(fs.Args(), 1, "<docId>"); err != nil {
		return err
	}

	export, err := c.api.ExportDocument(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if export.Filename == "" {
		export.Filename = fs.Arg(0) + ".txt"
	}
	path := filepath.Join(*dir, filepath.Base(export.Filename))
	if err := os.WriteFile(path, export.Body, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, path)
	return nil
}

func (c *cli) templates(ctx context.Context) error {
	templates, err := c.api.Templates(ctx)
	if err != nil {
		return err
	}
	for _, t := range templates {
		fmt.Fprintf(c.stdout, "%s\t%q\n", t.Name, t.Text)
	}
	return nil
}
