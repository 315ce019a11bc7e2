package jobs

import (
	"context"

	"github.com/samber/lo"

	"transmute/internal/logging"
)

// BatchItem is the outcome for one batch input. Result is zero when the
// item was rejected before submission or skipped after cancellation.
type BatchItem struct {
	Input   string
	Result  Result
	Err     error
	Skipped bool
}

// BatchCallbacks observe a batch. Job callbacks apply to each item.
type BatchCallbacks struct {
	Job Callbacks
	// OnItemStart fires before each submission with the 1-based index.
	OnItemStart func(index, total int, input string)
	// OnHandle exposes each running job, e.g. for a progress display.
	OnHandle func(*Handle)
}

// BatchSummary tallies a batch.
type BatchSummary struct {
	Items     []BatchItem
	Succeeded int
	Failed    int
	Cancelled int
	Skipped   int
}

// RunBatch applies template to every input in order, one job at a time.
// Duplicate inputs run once. template.Output is honoured only for a single
// input; batches derive each output from its input. A failed item does not stop the batch;
// cancelling ctx stops the current job and skips the remaining inputs.
func (c *Controller) RunBatch(ctx context.Context, inputs []string, template Spec, cb BatchCallbacks) BatchSummary {
	inputs = lo.Uniq(inputs)
	summary := BatchSummary{Items: make([]BatchItem, 0, len(inputs))}
	for i, input := range inputs {
		item := BatchItem{Input: input}
		if ctx.Err() != nil {
			item.Skipped = true
			summary.Skipped++
			summary.Items = append(summary.Items, item)
			continue
		}
		if cb.OnItemStart != nil {
			cb.OnItemStart(i+1, len(inputs), input)
		}

		spec := template
		spec.Input = input
		if len(inputs) > 1 {
			spec.Output = ""
		}
		h, err := c.Submit(ctx, spec, cb.Job)
		if err != nil {
			c.logger.Warn("batch item rejected",
				logging.String("input", input),
				logging.Error(err),
				logging.String(logging.FieldEventType, "batch_item_rejected"),
			)
			item.Err = err
			summary.Failed++
			summary.Items = append(summary.Items, item)
			continue
		}
		if cb.OnHandle != nil {
			cb.OnHandle(h)
		}
		item.Result = h.Wait()
		item.Err = item.Result.Err
		switch item.Result.State {
		case StateSucceeded:
			summary.Succeeded++
		case StateCancelled:
			summary.Cancelled++
		default:
			summary.Failed++
		}
		summary.Items = append(summary.Items, item)
	}
	return summary
}
