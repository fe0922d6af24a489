package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. The main application starts it alongside the HTTP server;
// failures are logged once and never retried.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
