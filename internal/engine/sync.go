package engine

import "context"

// RunSync copies sequentially on the calling goroutine. It shares the
// conflict rules and statistics of Run but aborts on the first failure
// unless ContinueOnError is set and Errors is an *ErrorWriter.
func RunSync(cfg Config) Result {
	op := newOperation(cfg)
	op.sequential = true
	ctx := context.Background()

	entries, err := op.prepare(ctx)
	if err != nil || len(entries) == 0 {
		op.finish(err)
		return op.Result()
	}

	for _, e := range entries {
		op.prog.started.Add(1)
		op.prog.enter()
		err := op.copyEntry(ctx, e)
		op.prog.leave()
		if err != nil {
			break
		}
	}

	op.finish(op.sinkErr())
	return op.Result()
}
