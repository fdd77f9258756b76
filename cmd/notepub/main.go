package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-notepub"
)

const usage = `usage: notepub <command> [flags]

commands:
  post [-publish] [-config path] <file.md>   publish a Markdown file (draft by default)
  preview [-config path] <file.md>           render a file without publishing
  format [-toml] <file.md>                   print the file with normalised front matter
  history list|stats|delete <id>             inspect the local publication history
  session import <cookies.json>|status|clear manage the stored login session
  session wait [-timeout d] <cookies.json>   wait for a browser to write a session export
  config show                                print the effective configuration`

// moduleBuilder is swapped in tests.
var moduleBuilder = func(configPath string) (*notepub.Module, error) {
	cfg, err := notepub.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return notepub.New(cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		stop()
		log.Fatalf("notepub: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "post":
		return runPost(ctx, args[1:], out)
	case "preview":
		return runPreview(ctx, args[1:], out)
	case "format":
		return runFormat(ctx, args[1:], out)
	case "history":
		return runHistory(ctx, args[1:], out)
	case "session":
		return runSession(ctx, args[1:], out)
	case "config":
		return runConfig(args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func runPost(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	publish := fs.Bool("publish", false, "Publish immediately instead of saving a draft")
	configPath := fs.String("config", "", "Path to a JSON, YAML or TOML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("post requires exactly one Markdown file")
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	result, err := module.Publish(ctx, fs.Arg(0), *publish)
	if err != nil {
		return fmt.Errorf("publish %s: %w", fs.Arg(0), err)
	}
	printResult(out, result)
	return nil
}

func printResult(out io.Writer, result *notepub.PublishResult) {
	fmt.Fprintf(out, "Article: %s\nTitle: %s\nStatus: %s\nCreated: %s\n",
		result.ArticleID, result.Title, result.Status, result.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Images: %d uploaded, %d failed\n", result.UploadedImages(), result.FailedImages())
	for _, outcome := range result.Images {
		if outcome.Err != nil {
			fmt.Fprintf(out, "  ! %s: %v\n", outcome.Reference.OriginalPath, outcome.Err)
			continue
		}
		fmt.Fprintf(out, "  - %s -> %s\n", outcome.Reference.OriginalPath, outcome.URL)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	if result.HistoryErr != nil {
		fmt.Fprintf(out, "History not updated: %v\n", result.HistoryErr)
	}
	if result.Stats != nil {
		fmt.Fprintf(out, "Total posts: %d (%d drafts, %d published)\n",
			result.Stats.TotalPosts, result.Stats.DraftCount, result.Stats.PublishedCount)
	}
	fmt.Fprintf(out, "Requests remaining this minute: %d\n", result.RequestStats.Remaining)
}

func runPreview(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a JSON, YAML or TOML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("preview requires exactly one Markdown file")
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	preview, err := module.Preview(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("preview %s: %w", fs.Arg(0), err)
	}

	fmt.Fprintf(out, "Path: %s\nTitle: %s\n", preview.FilePath, preview.FrontMatter.Title)
	if len(preview.FrontMatter.Tags) > 0 {
		fmt.Fprintf(out, "Tags: %s\n", strings.Join(preview.FrontMatter.Tags, ", "))
	}
	for _, violation := range preview.Violations {
		fmt.Fprintf(out, "Invalid: %s\n", violation)
	}
	for _, ref := range preview.Images {
		fmt.Fprintf(out, "Image: %s (%s, %d bytes)\n", ref.OriginalPath, ref.MimeType, ref.Size)
	}
	for _, skipped := range preview.Skipped {
		fmt.Fprintf(out, "Skipped image: %s (%s)\n", skipped.Path, strings.Join(skipped.Reasons, "; "))
	}
	for _, warning := range preview.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	fmt.Fprintf(out, "\n%s\n", preview.HTML)
	return nil
}

func runFormat(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("format", flag.ContinueOnError)
	toml := fs.Bool("toml", false, "Write the metadata block as TOML (+++) instead of YAML")
	configPath := fs.String("config", "", "Path to a JSON, YAML or TOML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("format requires exactly one Markdown file")
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	source, err := module.Format(ctx, fs.Arg(0), *toml)
	if err != nil {
		return fmt.Errorf("format %s: %w", fs.Arg(0), err)
	}
	_, err = out.Write(source)
	return err
}

func runHistory(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a JSON, YAML or TOML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("history requires list, stats or delete")
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	repo := module.History()

	switch fs.Arg(0) {
	case "list":
		records, err := repo.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].PostedAt.After(records[j].PostedAt)
		})
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTATUS\tPOSTED\tTITLE\tSOURCE")
		for _, record := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				record.ID, record.Status, record.PostedAt.Format(time.RFC3339), record.Title, record.SourceFilePath)
		}
		return tw.Flush()
	case "stats":
		stats, err := repo.Stats(ctx)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		fmt.Fprintf(out, "Total: %d\nDrafts: %d\nPublished: %d\n", stats.TotalPosts, stats.DraftCount, stats.PublishedCount)
		if stats.LastPostDate != nil {
			fmt.Fprintf(out, "Last post: %s\n", stats.LastPostDate.Format(time.RFC3339))
		}
		return nil
	case "delete":
		if fs.NArg() != 2 {
			return errors.New("history delete requires an id")
		}
		if err := module.DeleteHistory(ctx, fs.Arg(1)); err != nil {
			return fmt.Errorf("delete %s: %w", fs.Arg(1), err)
		}
		fmt.Fprintf(out, "Deleted %s\n", fs.Arg(1))
		return nil
	default:
		return fmt.Errorf("unknown history command %q", fs.Arg(0))
	}
}

func runSession(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a JSON, YAML or TOML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("session requires import, wait, status or clear")
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	store := module.Sessions()

	switch fs.Arg(0) {
	case "import":
		if fs.NArg() != 2 {
			return errors.New("session import requires a cookie export file")
		}
		data, err := os.ReadFile(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("read cookie export: %w", err)
		}
		session, err := module.ImportSession(ctx, data)
		if err != nil {
			return fmt.Errorf("import session: %w", err)
		}
		fmt.Fprintf(out, "Session saved to %s (%d cookies, expires %s)\n",
			store.Path(), len(session.Cookies), session.ExpiresAt.Format(time.RFC3339))
		return nil
	case "wait":
		return runSessionWait(ctx, module, fs.Args()[1:], out)
	case "status":
		if creds, err := module.Credentials(ctx); err != nil {
			fmt.Fprintf(out, "Credentials: %v\n", err)
		} else {
			fmt.Fprintf(out, "Credentials: %s\n", creds.Email)
		}
		session, err := store.Session(ctx)
		if err != nil {
			fmt.Fprintf(out, "No usable session: %v\n", err)
			return nil
		}
		fmt.Fprintf(out, "Session valid until %s (%d cookies)\n", session.ExpiresAt.Format(time.RFC3339), len(session.Cookies))
		return nil
	case "clear":
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Fprintln(out, "Session cleared")
		return nil
	default:
		return fmt.Errorf("unknown session command %q", fs.Arg(0))
	}
}

func runSessionWait(ctx context.Context, module *notepub.Module, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("session wait", flag.ContinueOnError)
	timeout := fs.Duration("timeout", 2*time.Minute, "How long to wait for a session cookie")
	interval := fs.Duration("interval", time.Second, "How often to re-read the export file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("session wait requires the path the cookie export will be written to")
	}
	path := fs.Arg(0)

	fmt.Fprintf(out, "Waiting up to %s for a session cookie in %s\n", *timeout, path)
	probe := func(context.Context) ([]notepub.Cookie, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return notepub.ParseCookieExport(data)
	}
	session, err := module.WaitForSession(ctx, probe, *interval, *timeout)
	if err != nil {
		return fmt.Errorf("wait for session: %w", err)
	}
	fmt.Fprintf(out, "Session saved to %s (%d cookies, expires %s)\n",
		module.Sessions().Path(), len(session.Cookies), session.ExpiresAt.Format(time.RFC3339))
	return nil
}

func runConfig(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a JSON, YAML or TOML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || fs.Arg(0) != "show" {
		return errors.New("config supports only: show")
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(module.Config()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
