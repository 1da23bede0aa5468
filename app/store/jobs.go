package store

import (
	"context"
	"database/sql"
	"errors"
)

// Provider hands out single-use connections to the ready database.
// Implemented by Connector; tests substitute counting or failing stubs.
type Provider interface {
	Acquire(ctx context.Context) (Conn, error)
}

// Job is a single posting. Immutable once constructed; ID is assigned by the
// store on insert and stays zero for values not yet persisted.
type Job struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Company     string `db:"company"`
}

// Jobs is the data access layer for the jobs table. Every operation acquires
// its own connection, executes exactly one parameterized statement and
// releases the connection before returning, on success and failure alike.
type Jobs struct {
	Provider Provider
}

// Create inserts a posting. Title and company are assumed non-empty, the
// caller validates before submission. The generated id is not reported back.
func (j *Jobs) Create(ctx context.Context, job Job) error {
	conn, err := j.Provider.Acquire(ctx)
	if err != nil {
		return &PersistenceError{Op: "create job", Err: err}
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, "INSERT INTO jobs (title, description, company) VALUES (?, ?, ?)",
		job.Title, job.Description, job.Company)
	if err != nil {
		return &PersistenceError{Op: "create job", Err: err}
	}
	return nil
}

// ListAll returns every posting, most recent first. An empty table yields an
// empty slice, not an error.
func (j *Jobs) ListAll(ctx context.Context) ([]Job, error) {
	conn, err := j.Provider.Acquire(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list jobs", Err: err}
	}
	defer conn.Close()

	jobs := []Job{}
	if err := conn.SelectContext(ctx, &jobs,
		"SELECT id, title, description, company FROM jobs ORDER BY id DESC"); err != nil {
		return nil, &PersistenceError{Op: "list jobs", Err: err}
	}
	return jobs, nil
}

// SearchByTitle returns at most one posting whose title contains term, with
// found=false when nothing matches. An empty term matches every row. Which
// row wins among multiple matches is store-defined.
func (j *Jobs) SearchByTitle(ctx context.Context, term string) (Job, bool, error) {
	conn, err := j.Provider.Acquire(ctx)
	if err != nil {
		return Job{}, false, &PersistenceError{Op: "search job", Err: err}
	}
	defer conn.Close()

	var job Job
	err = conn.GetContext(ctx, &job,
		"SELECT id, title, description, company FROM jobs WHERE title LIKE ? LIMIT 1", "%"+term+"%")
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, &PersistenceError{Op: "search job", Err: err}
	}
	return job, true, nil
}
