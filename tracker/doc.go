/*
Package tracker contains the playback engine of acidbox: the step sequencer,
the audio callback and the capture tap.

There are two independent clocks. The audio callback (Player.Process) runs on
the audio thread at a fixed block size and owns the signal chain. The
sequencer clock runs in its own goroutine at sixteenth note intervals and
calls Sequencer.Tick. The two only communicate through the Broker: the
sequencer sends note events to the player, which applies them at the start
of its next block. Trigger timing is therefore bounded by the block length,
not sample accurate. Config.Validate keeps a block shorter than a tick at the
fastest tempo, and the player starts at most one note per block, so no step
is lost when timer jitter puts two ticks into the same block.

The Engine is the entry point for user interfaces. It validates parameter
and pattern edits, runs the transport commands and arms and disarms the
capture tap. Notifications for the user interface (current step, recording
state, output level) arrive on Broker.ToModel.

Render plays a pattern offline, without any goroutines, clocking the
sequencer by sample count.
*/
package tracker
