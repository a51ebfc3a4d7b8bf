package state

// ResetPhase names where a running reset is in its CCD pipeline, for
// frontend progress bars.
type ResetPhase string

const (
	ResetPhaseStart ResetPhase = "start"
	ResetPhaseWait  ResetPhase = "wait"
	ResetPhaseWalk  ResetPhase = "walk"
	ResetPhaseParse ResetPhase = "parse"
	ResetPhaseArt   ResetPhase = "art"
	ResetPhaseDisk  ResetPhase = "disk"
	ResetPhaseDone  ResetPhase = "done"
)

// ResetState is the publishable snapshot of an in-flight Collection
// reset, polled by frontends through a read-only lock (see
// internal/kernel).
type ResetState struct {
	Resetting bool
	Percent   uint8
	Phase     ResetPhase
	Specific  string
}

// NewResetState returns the idle (not resetting) snapshot.
func NewResetState() *ResetState {
	return &ResetState{Phase: ResetPhaseDone}
}
