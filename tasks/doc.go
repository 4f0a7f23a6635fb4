// Package tasks provides an asynchronous, in-process task manager.
//
// A Manager owns a fixed pool of worker goroutines, an unbounded FIFO
// queue of pending tasks, and a history of every task ever submitted.
// Callers submit opaque deferred computations and poll for results;
// there is no push notification.
//
// # Basic Usage
//
//	mgr := tasks.New(tasks.Config{MaxConcurrent: 3})
//	defer mgr.Close()
//
//	id := mgr.Submit("summarize report", func(ctx context.Context) (string, error) {
//	    return llmProvider.Complete(ctx, prompt)
//	})
//
//	snap, err := mgr.Get(id)
//	if err == nil && snap.Status.IsTerminal() {
//	    fmt.Println(snap.Result, snap.Error)
//	}
//
// # Task Lifecycle
//
// Tasks move through a strict one-way state machine:
//
//	pending → running → completed
//	                  → failed
//
// There are no retries and no cancellation of a running body. A body
// that returns an error or panics marks its task failed; the failure
// never escapes the worker, and surfaces only when the caller polls the
// task's snapshot.
//
// # Concurrency
//
// Submissions are dequeued in strict FIFO order, but with more than one
// worker completion order is not submission order. Submit and the status
// queries only ever take the manager lock briefly; task bodies always
// execute outside it. Workers block on a condition variable while the
// queue is empty, so an idle pool costs nothing.
package tasks
