// Package cli is a terminal front end for the QA service that reuses the
// same client and state holders as the web page.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"docqa/config"
	"docqa/internal/models"
	"docqa/internal/render"
	"docqa/internal/services"
	"docqa/internal/state"
	"docqa/internal/web"
)

const usage = `usage: docqa cli <command> [args]

commands:
  upload <file.pdf>     upload a PDF document
  ask [question...]     ask a question (reads stdin when no args are given)
  health                show the service health
  reset                 drop the document loaded in the service
  chat <file.pdf>       upload a document, then ask questions line by line
                        (:history prints the history, :clear empties it, :quit exits)
`

// CLI runs one command against the QA service
type CLI struct {
	client      services.QAClientInterface
	maxUploadMB float64
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
}

// New creates a CLI writing to out and errOut and reading from in
func New(client services.QAClientInterface, maxUploadMB float64, in io.Reader, out, errOut io.Writer) *CLI {
	return &CLI{
		client:      client,
		maxUploadMB: maxUploadMB,
		in:          in,
		out:         out,
		errOut:      errOut,
	}
}

// Main runs the CLI with the process environment and exits with its status
func Main(args []string) {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := New(services.NewQAClient(cfg.APIBaseURL), cfg.MaxUploadMB, os.Stdin, os.Stdout, os.Stderr)
	code := c.Run(ctx, args)
	stop()
	os.Exit(code)
}

// Run executes the command named by args[0] and returns an exit status
func (c *CLI) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.errOut, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "upload":
		if len(args) != 2 {
			fmt.Fprint(c.errOut, usage)
			return 2
		}
		err = c.upload(ctx, state.NewUploadState(c.client), args[1])
	case "ask":
		err = c.ask(ctx, args[1:])
	case "health":
		err = c.health(ctx)
	case "reset":
		err = c.reset(ctx)
	case "chat":
		if len(args) != 2 {
			fmt.Fprint(c.errOut, usage)
			return 2
		}
		err = c.chat(ctx, args[1])
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return 0
	default:
		fmt.Fprintf(c.errOut, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(c.errOut, "error: %v\n", err)
		return 1
	}
	return 0
}

func (c *CLI) upload(ctx context.Context, uploads *state.UploadState, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return errors.New("Please select a PDF file")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if c.maxUploadMB > 0 {
		info, err := f.Stat()
		if err != nil {
			return err
		}
		if float64(info.Size()) > c.maxUploadMB*1024*1024 {
			return fmt.Errorf("File size must be less than %sMB", web.FormatMegabytes(c.maxUploadMB))
		}
	}

	fmt.Fprintf(c.out, "Uploading %s...\n", filepath.Base(path))
	result, err := uploads.Trigger(ctx, filepath.Base(path), f)
	if err != nil {
		return errors.New(uploads.Error())
	}

	printUpload(c.out, result)
	return nil
}

func (c *CLI) ask(ctx context.Context, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		data, err := io.ReadAll(c.in)
		if err != nil {
			return err
		}
		question = strings.TrimSpace(string(data))
	}
	if question == "" {
		return errors.New("question is required")
	}

	history := state.NewQuestionHistory(c.client)
	entry, err := history.Trigger(ctx, question)
	if err != nil {
		return errors.New(history.Error())
	}

	printEntry(c.out, entry)
	return nil
}

func (c *CLI) health(ctx context.Context) error {
	health, err := c.client.CheckHealth(ctx)
	if err != nil {
		return errors.New(state.DisplayMessage(err, services.HealthFailedMessage))
	}

	fmt.Fprintf(c.out, "Status: %s\n", health.Status)
	fmt.Fprintf(c.out, "RAG system loaded: %t\n", health.RAGSystemLoaded)
	return nil
}

func (c *CLI) reset(ctx context.Context) error {
	resp, err := c.client.ResetRemoteState(ctx)
	if err != nil {
		return errors.New(state.DisplayMessage(err, services.ResetFailedMessage))
	}

	fmt.Fprintln(c.out, resp.Message)
	return nil
}

// chat uploads a document and then answers one question per input line
func (c *CLI) chat(ctx context.Context, path string) error {
	if err := c.upload(ctx, state.NewUploadState(c.client), path); err != nil {
		return err
	}

	history := state.NewQuestionHistory(c.client)
	scanner := bufio.NewScanner(c.in)
	fmt.Fprint(c.out, "> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case ":quit", ":q":
			return nil
		case ":clear":
			history.Clear()
			fmt.Fprintln(c.out, "History cleared")
		case ":history":
			printHistory(c.out, history.History())
		default:
			entry, err := history.Trigger(ctx, line)
			if err != nil {
				fmt.Fprintf(c.errOut, "error: %s\n", history.Error())
				if ctx.Err() != nil {
					return ctx.Err()
				}
			} else {
				printEntry(c.out, entry)
			}
		}
		fmt.Fprint(c.out, "> ")
	}

	fmt.Fprintln(c.out)
	return scanner.Err()
}

func printUpload(w io.Writer, result *models.UploadResult) {
	fmt.Fprintln(w, result.Message)
	fmt.Fprintf(w, "Filename: %s\n", result.Filename)
	fmt.Fprintf(w, "Chunks Created: %d\n", result.ChunksCreated)
	fmt.Fprintf(w, "File Size: %s MB\n", web.FormatMegabytes(result.FileSizeMB))
}

func printEntry(w io.Writer, entry *models.HistoryEntry) {
	fmt.Fprintln(w, entry.Answer)
	if len(entry.SourceDocuments) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSources (%d):\n", len(entry.SourceDocuments))
	for i, src := range entry.SourceDocuments {
		fmt.Fprintf(w, "  [%d] %s\n", i+1, render.Preview(src, 100))
	}
}

func printHistory(w io.Writer, history []models.HistoryEntry) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No questions yet")
		return
	}
	for _, entry := range history {
		fmt.Fprintf(w, "[%s] Q: %s\n", entry.Timestamp.Format("15:04:05"), entry.Question)
		fmt.Fprintf(w, "           A: %s\n", entry.Answer)
	}
}
