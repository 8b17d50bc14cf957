package cli

const (
	FlagHome    = "home"
	FlagFormat  = "format"
	FlagVersion = "to"
	FlagWorkers = "workers"
)
