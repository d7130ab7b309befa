/*
Package flow implements the daily-task progression state machine: the
ordered cycle of gate check, pre-assessment, practice, post-assessment, and
completion lock that every BLESS exercise page drives.

# States

	Idle → Gated → PreAssessment → Practice → PostAssessment → Completed
	Idle → Blocked (terminal, once today's cycle is already finished)

One Controller exists per cycle, holding all flow state explicitly. The
gate is fail-open: a failed check allows the participant through rather
than locking them out of a wellbeing tool.

# Persistence

Writes issued during the flow go through a bounded Outbox: FIFO intents
retried with exponential backoff, drained with a capped wait before the
terminal transition. The visual flow never blocks on the network; an
intent that cannot be delivered is dropped and logged.

Completion uses the server's combined operation, keyed by the controller's
cycle ID, so a retried or replayed completion cannot advance the trial
counter twice.

# Completion signals

The embedded practice view announces completion over a Bus as a typed
CompletionSignal with a fixed discriminator and an acknowledgement, rather
than a raw window message. Any well-formed practice-finished signal
advances the flow, regardless of which exercise sent it; other kinds are
acknowledged (delivered) and dropped.
*/
package flow
