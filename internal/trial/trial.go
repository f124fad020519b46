// Package trial plans and runs one experiment session: it orders stimuli
// into a trial plan, drives the per-trial state machine, and records the
// immutable results.
package trial

import (
	"log"
	"math/rand"

	"github.com/cogmotion/rotation.report/internal/stimulus"
)

// Trial is a read-only view binding one stimulus to its session condition.
// IsMirror is copied from the stimulus at plan-build time and does not
// change even if the underlying record is relabeled afterwards.
type Trial struct {
	Stimulus        stimulus.Stimulus
	RotationEnabled bool
	IsMirror        bool
}

// Sequencer partitions and orders stimuli into a trial plan.
type Sequencer struct {
	rng *rand.Rand
}

// NewSequencer returns a sequencer drawing shuffles from rng.
func NewSequencer(rng *rand.Rand) *Sequencer {
	return &Sequencer{rng: rng}
}

// Plan builds the session's trial order. Stimuli with a mirror annotation
// are shuffled and the first nRotation+nNoRotation are taken; the leading
// nRotation trials get interactive rotation. When fewer labeled stimuli are
// available than requested, the plan falls back to the first
// nRotation+nNoRotation records of the original collection in file order,
// unlabeled records included (their mirror flag defaults to false).
func (s *Sequencer) Plan(stimuli []stimulus.Stimulus, nRotation, nNoRotation int) []Trial {
	total := nRotation + nNoRotation

	valid := make([]stimulus.Stimulus, 0, len(stimuli))
	for _, st := range stimuli {
		if st.Labeled() {
			valid = append(valid, st)
		}
	}

	var selected []stimulus.Stimulus
	if len(valid) < total {
		log.Printf("warning: only %d labeled stimuli available, %d requested; falling back to first %d in file order", len(valid), total, total)
		if total > len(stimuli) {
			total = len(stimuli)
		}
		selected = stimuli[:total]
	} else {
		s.rng.Shuffle(len(valid), func(i, j int) {
			valid[i], valid[j] = valid[j], valid[i]
		})
		selected = valid[:total]
	}

	trials := make([]Trial, len(selected))
	for i, st := range selected {
		isMirror := false
		if st.IsMirror != nil {
			isMirror = *st.IsMirror
		}
		trials[i] = Trial{
			Stimulus:        st,
			RotationEnabled: i < nRotation,
			IsMirror:        isMirror,
		}
	}
	return trials
}
