package repositories

// RepositoryProvider holds the repositories of one store driver.
type RepositoryProvider struct {
	UserRepo UserRepositoryFacade
}
