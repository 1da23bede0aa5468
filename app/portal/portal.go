package portal

import (
	"context"

	"github.com/umputun/jobport/app/store"
)

// JobStore is the repository surface the service submits operations against.
type JobStore interface {
	Create(ctx context.Context, job store.Job) error
	ListAll(ctx context.Context) ([]store.Job, error)
	SearchByTitle(ctx context.Context, term string) (store.Job, bool, error)
}

// SearchResult is the terminal value of a search submission. Found=false
// means no posting matched, which is an expected outcome, not a failure.
type SearchResult struct {
	Job   store.Job
	Found bool
}

// Service is the surface the presentation layer talks to. Every Submit call
// returns immediately; the result arrives later as a completion callback on
// the runner, executed by the presentation loop. Inputs are assumed
// pre-validated, required fields non-empty.
type Service struct {
	Jobs   JobStore
	Runner *Runner
}

// SubmitCreate posts a job authored by the employer, whose name becomes the
// company field. The store assigns the id; it is not reported back.
func (s *Service) SubmitCreate(title, description string, by Employer, done func(error)) {
	job := store.Job{Title: title, Description: description, Company: by.Name()}
	Go(s.Runner, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.Jobs.Create(ctx, job)
	}, func(_ struct{}, err error) { done(err) })
}

// SubmitList fetches all postings, most recent first.
func (s *Service) SubmitList(done func([]store.Job, error)) {
	Go(s.Runner, s.Jobs.ListAll, done)
}

// SubmitSearch looks up a single posting by title substring.
func (s *Service) SubmitSearch(term string, done func(SearchResult, error)) {
	Go(s.Runner, func(ctx context.Context) (SearchResult, error) {
		job, found, err := s.Jobs.SearchByTitle(ctx, term)
		return SearchResult{Job: job, Found: found}, err
	}, done)
}
