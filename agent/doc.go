// Package agent assembles Willow: settings, LLM providers, the note
// store, and the background task manager behind one façade.
//
// Quick interactions go through ProcessPrompt, which blocks on the
// preferred provider. Long-running work goes through SubmitTask with a
// typed TaskSpec (PromptTask, NoteSearchTask); the agent validates the
// spec, binds its payload into a deferred body, and hands it to the
// task manager. Callers poll TaskStatus with the returned ID; there is
// no push notification.
package agent
