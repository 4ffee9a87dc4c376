package db

// Repositories provides access to all database repositories
type Repositories struct {
	Users   *UserRepository
	Stories *StoryRepository
	Views   *ViewRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Users:   NewUserRepository(db),
		Stories: NewStoryRepository(db),
		Views:   NewViewRepository(db),
	}
}
