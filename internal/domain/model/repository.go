package model

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// FullName returns the "owner/name" form of the repository.
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}
