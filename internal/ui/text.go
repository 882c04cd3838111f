package ui

// User-facing strings shared by the TUI and the CLI.
const (
	HeaderTitle   = "Todo List"
	Loading       = "Loading todos..."
	LoadError     = "Error loading todos"
	Retry         = "Retry"
	EmptyList     = "No todos yet. Add one above!"
	Adding        = "Adding todo..."
	Updating      = "Updating todo..."
	Deleting      = "Deleting todo..."
	ConfirmDelete = "Are you sure you want to delete this todo?"
	Placeholder   = "Add a new todo..."
)
