package pipeline

// Status is a job's position in the processing state machine. Transitions
// run strictly forward; ERROR is terminal and reachable from any
// non-terminal state. A failed job is resubmitted as a new job, never
// retried in place.
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusExtractingAudio Status = "EXTRACTING_AUDIO"
	StatusAudioExtracted  Status = "AUDIO_EXTRACTED"
	StatusTranscribing    Status = "TRANSCRIBING"
	StatusFinalizing      Status = "FINALIZING"
	StatusDone            Status = "DONE"
	StatusError           Status = "ERROR"
)

// Transcription progress climbs from transcribeFloor to transcribeCeil
// across the chunk loop.
const (
	transcribeFloor = 40
	transcribeCeil  = 75
)

var progressFloors = map[Status]int{
	StatusPending:         0,
	StatusExtractingAudio: 10,
	StatusAudioExtracted:  25,
	StatusTranscribing:    transcribeFloor,
	StatusFinalizing:      80,
	StatusDone:            100,
}

// ProgressFloor returns the progress value persisted when entering the
// status. ERROR keeps whatever progress the job had reached.
func (s Status) ProgressFloor() int {
	return progressFloors[s]
}

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// chunkProgress maps completion of chunk i (zero-based) out of n onto the
// transcription progress band.
func chunkProgress(i, n int) int {
	return transcribeFloor + (i+1)*(transcribeCeil-transcribeFloor)/n
}
