// Package events defines the typed event contract emitted by the captioning
// controller.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - caption.*
//   - recognition.*
//   - controller.*
//
// Semantics used across the package:
//
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Finalized: terminal immutable text that will not be revised.
//   - Started/Ended/Stopped: lifecycle boundaries.
//   - Scheduled/Cancelled: deferred actions and their withdrawal.
//
// caption events
//
//   - CaptionInterimUpdated (caption.interim_updated): the pending caption was
//     replaced with a new best guess.
//   - CaptionFinalized (caption.finalized): a caption was appended and will
//     not change.
//   - CaptionLogUpdated (caption.log_updated): snapshot of the caption log
//     after an update.
//   - CaptionLogCleared (caption.log_cleared): the caption log was reset.
//
// recognition events
//
//   - ListeningStarted (recognition.listening_started): continuous listening
//     began in the given language.
//   - ListeningStopped (recognition.listening_stopped): continuous listening
//     ended; includes the reason.
//   - SessionStarted (recognition.session_started): a source session was
//     started, either on request or as an automatic restart.
//   - SessionEnded (recognition.session_ended): the source ended a session.
//   - RestartScheduled (recognition.restart_scheduled): an automatic restart
//     was scheduled after the given delay.
//   - RestartCancelled (recognition.restart_cancelled): a scheduled restart
//     was withdrawn before it ran.
//   - RecognitionFailed (recognition.failed): the source reported an error;
//     includes the code and its classification.
//
// controller events
//
//   - StateChanged (controller.state_changed): controller state transition.
//   - LanguageChanged (controller.language_changed): selected language
//     changed.
package events
