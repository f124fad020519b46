package main

import (
	"context"
	"fmt"
	"log"

	"github.com/cogmotion/rotation.report/internal/analysis"
	"github.com/cogmotion/rotation.report/internal/trial"
)

// runSession pumps input events into the controller until the session
// reaches a terminal state, the event source is exhausted, or ctx is
// cancelled. Cancellation aborts the session; results recorded so far are
// kept.
func runSession(ctx context.Context, c *trial.Controller, events <-chan trial.Event) error {
	c.Start()
	announceTrial(c)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Input source gone mid-session: treat as an abort.
				c.Handle(trial.Event{Kind: trial.EventAbort})
				return nil
			}
			before := c.TrialNumber()
			c.Handle(ev)

			switch c.State() {
			case trial.StateCompleted, trial.StateAborted:
				announceResponse(c)
				return nil
			case trial.StatePresenting:
				if c.TrialNumber() != before {
					announceResponse(c)
					announceTrial(c)
				}
			}

		case <-ctx.Done():
			c.Handle(trial.Event{Kind: trial.EventAbort})
			return nil
		}
	}
}

func announceTrial(c *trial.Controller) {
	t, ok := c.Current()
	if !ok {
		return
	}
	condition := "WITHOUT ROTATION"
	if t.RotationEnabled {
		condition = "WITH ROTATION"
	}
	log.Printf("trial %d/%d - %s (stimulus %s)", c.TrialNumber(), c.PlanLength(), condition, t.Stimulus.ID)
}

// announceResponse logs the outcome of the most recently recorded trial.
func announceResponse(c *trial.Controller) {
	results := c.Results()
	if len(results) == 0 {
		return
	}
	r := results[len(results)-1]
	verdict := "INCORRECT"
	if r.IsCorrect {
		verdict = "CORRECT"
	}
	response := "same"
	if r.UserResponse {
		response = "different"
	}
	log.Printf("trial %d: %s (%s, %.2fs)", r.TrialNumber, verdict, response, r.ResponseTime)
}

// printSummary writes the end-of-session report to stdout, mirroring what
// operators expect to read after a run.
func printSummary(results []trial.Result) {
	if len(results) == 0 {
		fmt.Println("No results to report")
		return
	}

	s := analysis.Summarize(results)

	fmt.Println()
	fmt.Println("============================================================")
	fmt.Println("SESSION RESULTS")
	fmt.Println("============================================================")
	fmt.Printf("Total trials: %d\n", s.Total)
	fmt.Printf("Correct responses: %d\n", s.Correct)
	fmt.Printf("Accuracy: %.1f%%\n", s.Accuracy*100)

	if s.WithRotation.Total > 0 {
		fmt.Printf("\nWith rotation: %d/%d (%.1f%%)\n",
			s.WithRotation.Correct, s.WithRotation.Total, s.WithRotation.Accuracy*100)
	}
	if s.WithoutRotation.Total > 0 {
		fmt.Printf("Without rotation: %d/%d (%.1f%%)\n",
			s.WithoutRotation.Correct, s.WithoutRotation.Total, s.WithoutRotation.Accuracy*100)
	}

	fmt.Printf("\nMean response time: %.2fs\n", s.MeanResponseTime)
	fmt.Printf("Mean angular disparity: %.2f deg\n", s.MeanDisparity)

	fmt.Println()
	fmt.Println("============================================================")
	fmt.Println("ADE ANALYSIS")
	fmt.Println("============================================================")
	printFits(results)

	cmp := analysis.CompareConditions(results)
	fmt.Printf("\nCondition comparison (rotation vs none): mean RT %.2fs vs %.2fs, t=%.3f, p=%.4f\n",
		cmp.MeanTimeRotation, cmp.MeanTimeNoRotation, cmp.TStat, cmp.PValue)
}

func printFits(results []trial.Result) {
	fits := analysis.ByCorrectness(results)
	fmt.Printf("Correct   (n=%d): r=%.3f, p=%.4f, slope=%.4f s/deg, intercept=%.3f s\n",
		fits[true].N, fits[true].Correlation, fits[true].PValue, fits[true].Slope, fits[true].Intercept)
	fmt.Printf("Incorrect (n=%d): r=%.3f, p=%.4f, slope=%.4f s/deg, intercept=%.3f s\n",
		fits[false].N, fits[false].Correlation, fits[false].PValue, fits[false].Slope, fits[false].Intercept)

	crossed := analysis.ByCorrectnessAndRotation(results)
	for _, cond := range []bool{true, false} {
		label := "with rotation"
		if !cond {
			label = "without rotation"
		}
		c := crossed[analysis.Group{Correct: true, RotationEnabled: cond}]
		i := crossed[analysis.Group{Correct: false, RotationEnabled: cond}]
		fmt.Printf("%s: correct r=%.3f p=%.4f (n=%d) | incorrect r=%.3f p=%.4f (n=%d)\n",
			label, c.Correlation, c.PValue, c.N, i.Correlation, i.PValue, i.N)
	}
}
