package scan

import "stockscan/internal/warehouse"

// View is an immutable snapshot of the form.
type View struct {
	State            State
	Outcome          State
	Tag              string
	ResolutionKind   string
	Resolution       string
	Direction        warehouse.Direction
	ProjectInput     string
	Quantity         int
	BundleMode       warehouse.BundleMode
	Status           string
	StatusKind       StatusKind
	Pending          int
	BundleModePrompt bool
	SubmitEnabled    bool
}
