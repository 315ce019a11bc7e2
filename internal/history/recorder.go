package history

import (
	"context"

	"transmute/internal/jobs"
	"transmute/internal/services"
)

// Recorder stores finished jobs. It satisfies jobs.Recorder.
type Recorder struct {
	Store *Store
}

// Record converts result into an Entry and stores it.
func (r Recorder) Record(ctx context.Context, result jobs.Result) error {
	if r.Store == nil {
		return nil
	}
	return r.Store.Add(ctx, EntryFromResult(result))
}

// EntryFromResult flattens a job result for storage.
func EntryFromResult(result jobs.Result) Entry {
	entry := Entry{
		ID:        result.ID,
		Operation: string(result.Operation),
		Input:     result.Input,
		Output:    result.Output,
		State:     string(result.State),
		ExitCode:  result.ExitCode,
		Encoder:   result.Encoder,
		StartedAt: result.Started,
		Elapsed:   result.Elapsed,
	}
	if !result.Started.IsZero() {
		entry.FinishedAt = result.Started.Add(result.Elapsed)
	}
	if result.Err != nil {
		entry.ErrorKind = services.Kind(result.Err)
		entry.ErrorMessage = result.Err.Error()
	}
	for _, w := range result.Warnings {
		if w != nil {
			entry.Warnings = append(entry.Warnings, w.Error())
		}
	}
	return entry
}
