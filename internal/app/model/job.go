package model

// Job pairs an episode with its resolved output path for the
// duration of one transfer attempt.
type Job struct {
	Episode      Episode
	Path         string
	SkipExisting bool
}

// Result is the outcome of one Job. Message is the human readable
// line shown to the user.
type Result struct {
	Episode Episode
	Path    string
	Success bool
	// Skipped is true when the target already existed and no I/O was
	// done.
	Skipped bool
	Bytes   int64
	Message string
}

// BatchSummary aggregates the results of a batch in completion
// order. ID correlates the log records of the batch and of the stages
// that follow it.
type BatchSummary struct {
	ID        string
	Succeeded int
	Total     int
	Results   []Result
}

// Add appends r to the summary.
func (s *BatchSummary) Add(r Result) {
	s.Total++
	if r.Success {
		s.Succeeded++
	}
	s.Results = append(s.Results, r)
}

// Downloaded returns the paths of results that transferred a file in
// this batch (successful and not skipped).
func (s *BatchSummary) Downloaded() []string {
	var paths []string
	for _, r := range s.Results {
		if r.Success && !r.Skipped {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

// MediaInfo is what a prober could determine about a downloaded
// file.
type MediaInfo struct {
	ContentType string
	Duration    ItunesDuration
	Size        int64
}
