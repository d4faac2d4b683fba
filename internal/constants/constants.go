package constants

// Keys of the controller registry handed to the router.
const (
	Content = iota
	Ingest
	Lint
	Auth
)
