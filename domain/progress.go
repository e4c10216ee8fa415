package domain

// ProgressManager coordinates progress reporting for long running checks
type ProgressManager interface {
	// StartTask begins tracking a task with the given description and
	// total number of steps
	StartTask(description string, total int) TaskProgress

	// IsInteractive reports whether progress is actually displayed
	IsInteractive() bool

	// Close releases any resources used for progress display
	Close()
}

// TaskProgress tracks the progress of a single task
type TaskProgress interface {
	// Increment advances the task by n steps
	Increment(n int)

	// Describe updates the task description
	Describe(description string)

	// Complete marks the task as finished
	Complete()
}
