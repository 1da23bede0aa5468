package portal

// User is an actor on the portal. The users table provisions both variants
// but only employers are exercised, job seekers browse anonymously.
type User interface {
	Role() string
	Name() string
}

// Employer posts jobs under its company name.
type Employer struct {
	name  string
	email string
}

// NewEmployer makes an employer identity for posting jobs.
func NewEmployer(name, email string) Employer { return Employer{name: name, email: email} }

// Role implements User
func (e Employer) Role() string { return "Employer" }

// Name implements User, used as the company field of posted jobs
func (e Employer) Name() string { return e.name }

// Email is the employer's contact address
func (e Employer) Email() string { return e.email }
