// Package console is the terminal presentation layer. A single goroutine owns
// all user-visible output: it reads commands, submits repository operations
// through the portal service and applies their completion callbacks. Blocking
// database work never happens on this goroutine.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jobport/app/portal"
	"github.com/umputun/jobport/app/store"
)

// Controller drives the interactive session. Employer supplies the company
// name for posted jobs.
type Controller struct {
	Portal   *portal.Service
	Employer portal.Employer
	In       io.Reader
	Out      io.Writer
}

// Run executes the loop until quit, input EOF or context cancellation.
// Completions and input are consumed from the same select, so results of
// concurrent operations may interleave in any order.
func (c *Controller) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	c.printf("jobport, type \"help\" for commands\n")
	c.Portal.SubmitList(c.showJobs) // initial load

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case apply := <-c.Portal.Runner.Completions():
			apply()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.dispatch(line); quit {
				return nil
			}
		}
	}
}

// dispatch parses one command line and submits the matching operation.
// Required fields are validated here, before submission, invalid input never
// reaches the repository.
func (c *Controller) dispatch(line string) (quit bool) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch strings.ToLower(cmd) {
	case "":
	case "help":
		c.showHelp()
	case "list":
		c.printf("loading jobs...\n")
		c.Portal.SubmitList(c.showJobs)
	case "search":
		term := strings.TrimSpace(rest)
		if term == "" {
			c.printf("please enter a title to search\n")
			return false
		}
		c.printf("searching for %q...\n", term)
		c.Portal.SubmitSearch(term, c.showSearch(term))
	case "post":
		title, desc, _ := strings.Cut(rest, "|")
		title, desc = strings.TrimSpace(title), strings.TrimSpace(desc)
		if title == "" || desc == "" {
			c.printf("usage: post <title> | <description>\n")
			return false
		}
		c.printf("posting job...\n")
		c.Portal.SubmitCreate(title, desc, c.Employer, c.showPosted)
	case "quit", "exit":
		return true
	default:
		c.printf("unknown command %q, type \"help\"\n", cmd)
	}
	return false
}

func (c *Controller) showPosted(err error) {
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("job posted successfully\n")
	// the refreshed list, not submission order, is the authoritative state
	c.Portal.SubmitList(c.showJobs)
}

func (c *Controller) showJobs(jobs []store.Job, err error) {
	if err != nil {
		c.fail(err)
		return
	}
	if len(jobs) == 0 {
		c.printf("no jobs available\n")
		return
	}
	c.printf("--- available jobs (total: %d) ---\n", len(jobs))
	for _, job := range jobs {
		c.printJob(job)
	}
}

func (c *Controller) showSearch(term string) func(portal.SearchResult, error) {
	return func(res portal.SearchResult, err error) {
		if err != nil {
			c.fail(err)
			return
		}
		if !res.Found {
			c.printf("job with title containing %q not found\n", term)
			return
		}
		c.printf("--- found job ---\n")
		c.printJob(res.Job)
	}
}

func (c *Controller) printJob(job store.Job) {
	c.printf("id: %d\ntitle: %s\ncompany: %s\ndescription: %s\n---------------------\n",
		job.ID, job.Title, job.Company, job.Description)
}

func (c *Controller) fail(err error) {
	log.Printf("[WARN] operation failed: %v", err)
	c.printf("database error: %v\n", err)
}

func (c *Controller) showHelp() {
	c.printf(`commands:
  post <title> | <description>  post a job under your company
  list                          show all jobs, most recent first
  search <term>                 find a job by title substring
  quit                          exit
`)
}

func (c *Controller) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}
