package thumbs

// Status is the outcome of a single variant pipeline.
type Status string

const (
	// StatusWritten means the encoded variant was committed to storage.
	StatusWritten Status = "written"

	// StatusSkipped means the destination key already existed and the
	// overwrite policy left it untouched.
	StatusSkipped Status = "skipped"

	// StatusFailed means the variant could not be generated.
	StatusFailed Status = "failed"
)

// GenerationResult reports the outcome of one thumbnail spec within a
// single generation call. Err is set only for StatusFailed.
type GenerationResult struct {
	Spec   string
	Key    string
	Status Status
	Err    error
}
