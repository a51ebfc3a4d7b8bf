package kernel

import (
	"context"
	"time"

	"github.com/hinto-janai/festival-sub001/internal/audio"
	"github.com/hinto-janai/festival-sub001/internal/ccd"
	"github.com/hinto-janai/festival-sub001/internal/collection"
	"github.com/hinto-janai/festival-sub001/internal/state"
)

// resetCollection runs the reset protocol from spec.md §4.3: drop the
// old Collection from Search/Audio/Kernel, wait out any in-flight save,
// run CCD, and publish the new Collection to every consumer. It must
// only ever be invoked from the command loop goroutine (never
// concurrently with another reset).
func (k *Kernel) resetCollection(paths []string) {
	k.resetting.Store(true)
	k.publishReset(state.ResetState{Resetting: true, Phase: state.ResetPhaseStart})

	old := k.col.Load()
	k.searchEngine.DropCollection()
	k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdDropCollection}
	k.col.Store(collection.EmptyCollection())

	for k.saving.Load() {
		k.publishReset(state.ResetState{Resetting: true, Phase: state.ResetPhaseWait})
		time.Sleep(10 * time.Millisecond)
	}

	c := ccd.New(ccd.Options{
		Paths:          paths,
		ArtDir:         k.opts.ArtDir,
		CollectionPath: k.opts.CollectionPath,
		NoArt:          k.opts.NoArt,
		Separator:      k.opts.Separator,
	})
	c.Prev = old

	done := make(chan ccd.Result, 1)
	go func() { done <- c.Run(context.Background()) }()

	for p := range c.Progress {
		phase := ccdPhaseToResetPhase(p.Phase)
		k.publishReset(state.ResetState{Resetting: true, Phase: phase, Percent: p.Percent, Specific: p.Detail})
		if p.Err != nil {
			log.Errorf("ccd: %s: %v", p.Phase, p.Err)
		}
	}

	result := <-done
	if result.Err != nil {
		log.Errorf("ccd run failed, keeping previous collection: %v", result.Err)
		k.col.Store(old)
		k.searchEngine.SetCollection(old)
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdNewCollection, NewCollection: old}
		k.resetting.Store(false)
		k.publishReset(state.ResetState{Resetting: false, Phase: state.ResetPhaseDone})
		return
	}

	k.col.Store(result.Collection)
	k.playlists.Rebuild(result.Collection)
	k.audioState.Validate(result.Collection)

	k.searchEngine.SetCollection(result.Collection)
	k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdNewCollection, NewCollection: result.Collection}

	k.resetting.Store(false)
	k.publishReset(state.ResetState{Resetting: false, Phase: state.ResetPhaseDone, Percent: 100})
}

func (k *Kernel) publishReset(rs state.ResetState) {
	k.resetState.Store(&rs)
}

func ccdPhaseToResetPhase(p ccd.Phase) state.ResetPhase {
	switch p {
	case ccd.PhaseWalkDir:
		return state.ResetPhaseWalk
	case ccd.PhaseParse:
		return state.ResetPhaseParse
	case ccd.PhaseArt, ccd.PhaseClone, ccd.PhaseConvert:
		return state.ResetPhaseArt
	case ccd.PhaseDisk:
		return state.ResetPhaseDisk
	case ccd.PhasePublish, ccd.PhaseFinalize:
		return state.ResetPhaseDone
	default:
		return state.ResetPhaseStart
	}
}
