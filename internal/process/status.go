package process

// Status is the lifecycle state of an agent process.
type Status string

const (
	Running    Status = "RUNNING"
	Completed  Status = "COMPLETED"
	Failed     Status = "FAILED"
	Stuck      Status = "STUCK"
	Waiting    Status = "WAITING"
	Paused     Status = "PAUSED"
	Terminated Status = "TERMINATED"
)

// Terminal reports whether the process can never advance again.
func (s Status) Terminal() bool {
	switch s {
	case Completed, Failed, Terminated:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }
