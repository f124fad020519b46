// label-stimuli annotates stimulus records with their mirror labels. Each
// label call rewrites the whole collection file, keeping it diffable one
// record per line.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/cogmotion/rotation.report/internal/stimulus"
)

var (
	stimulusFile = flag.String("stimuli", "stimuli_data.json", "Stimulus collection file")
	index        = flag.Int("index", -1, "Index of the stimulus to label")
	same         = flag.Bool("same", false, "Label the pair as identical (is_mirror=false)")
	different    = flag.Bool("different", false, "Label the pair as mirrored (is_mirror=true)")
	list         = flag.Bool("list", false, "List stimuli and their labels")
)

func main() {
	flag.Parse()

	repo := stimulus.NewRepository(*stimulusFile)
	stimuli, err := repo.Load()
	if err != nil {
		if errors.Is(err, stimulus.ErrNotFound) {
			log.Fatalf("%v\ngenerate a stimulus file first, then label it here", err)
		}
		log.Fatalf("failed to load stimuli: %v", err)
	}

	if *list {
		listStimuli(stimuli)
		return
	}

	if *index < 0 {
		log.Fatal("provide -index with -same or -different (or -list)")
	}
	if *same == *different {
		log.Fatal("provide exactly one of -same or -different")
	}

	if err := repo.Label(stimuli, *index, *different); err != nil {
		log.Fatalf("failed to label stimulus: %v", err)
	}

	label := "SAME (is_mirror=false)"
	if *different {
		label = "DIFFERENT (is_mirror=true)"
	}
	log.Printf("stimulus %d (%s) labeled %s, file rewritten", *index, stimuli[*index].ID, label)
}

func listStimuli(stimuli []stimulus.Stimulus) {
	labeled := 0
	for i, s := range stimuli {
		label := "unlabeled"
		if s.IsMirror != nil {
			labeled++
			if *s.IsMirror {
				label = "mirror"
			} else {
				label = "same"
			}
		}
		fmt.Printf("%3d  %-24s angle=%6.1f  %s\n", i, s.ID, s.Angle, label)
	}
	fmt.Printf("%d/%d labeled\n", labeled, len(stimuli))
}
