// wizard/machine.go
package wizard

import (
	"fmt"
	"time"
)

// State of a wizard run (persisted as a string with the draft).
type State string

const (
	StateStep1      State = "step1"
	StateStep2      State = "step2"
	StateStep3      State = "step3"
	StateStep4      State = "step4"
	StateStep5      State = "step5"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

var stepOrder = []State{StateStep1, StateStep2, StateStep3, StateStep4, StateStep5}

// AllowTransition is the directed graph of legal moves. Backward moves are
// always present and never validated; forward moves are gated by the step
// validator before being applied.
var AllowTransition = map[State][]State{
	StateStep1:      {StateStep2},
	StateStep2:      {StateStep1, StateStep3},
	StateStep3:      {StateStep2, StateStep4},
	StateStep4:      {StateStep3, StateStep5},
	StateStep5:      {StateStep4, StateSubmitting},
	StateSubmitting: {StateCompleted, StateFailed},
	// failed rolls back to the review step so entered data survives a retry
	StateFailed:    {StateStep5},
	StateCompleted: {},
}

func CanTransition(from, to State) bool {
	for _, s := range AllowTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}

func stepIndex(s State) int {
	for i, st := range stepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Advance validates the current step and, when clean, moves the draft forward
// one step. The violations come back either way so the UI can render them.
func (d *Draft) Advance(configured []ConfiguredItem) []string {
	i := stepIndex(d.State)
	if i < 0 || i == len(stepOrder)-1 {
		return []string{fmt.Sprintf("não é possível avançar a partir de %s", d.State)}
	}
	if v := ValidateStep(d, d.State, configured); len(v) > 0 {
		return v
	}
	d.State = stepOrder[i+1]
	d.UpdatedAt = time.Now().Unix()
	return nil
}

// Back moves one step backward. Always permitted, never re-validates.
func (d *Draft) Back() error {
	i := stepIndex(d.State)
	if i <= 0 {
		return fmt.Errorf("não é possível voltar a partir de %s", d.State)
	}
	d.State = stepOrder[i-1]
	d.UpdatedAt = time.Now().Unix()
	return nil
}

// BeginSubmit moves step 5 into submitting after re-running every gate.
func (d *Draft) BeginSubmit(configured []ConfiguredItem) []string {
	if d.State != StateStep5 {
		return []string{fmt.Sprintf("envio só é permitido na revisão, estado atual: %s", d.State)}
	}
	if v := ValidateAll(d, configured); len(v) > 0 {
		return v
	}
	d.State = StateSubmitting
	d.UpdatedAt = time.Now().Unix()
	return nil
}

// Complete and Fail are the two exits of submitting. Fail lands on step 5
// with the accumulated data intact.
func (d *Draft) Complete() error {
	if !CanTransition(d.State, StateCompleted) {
		return fmt.Errorf("transição inválida: %s -> %s", d.State, StateCompleted)
	}
	d.State = StateCompleted
	d.UpdatedAt = time.Now().Unix()
	return nil
}

func (d *Draft) Fail() error {
	if !CanTransition(d.State, StateFailed) {
		return fmt.Errorf("transição inválida: %s -> %s", d.State, StateFailed)
	}
	// failed is transient: the draft is stored already back on review
	d.State = StateStep5
	d.UpdatedAt = time.Now().Unix()
	return nil
}
