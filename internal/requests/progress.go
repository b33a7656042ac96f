package requests

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/mzjcars/stockdesk/internal/stock"
)

// newRowMachine builds the per-row step machine positioned at the row's
// current stage. Events are the stages themselves: each stage is reachable
// only from the one before it, which makes skipping and going backward
// unrepresentable.
func newRowMachine(p models.StepProgress) *fsm.FSM {
	return fsm.NewFSM(
		string(p.Current()),
		fsm.Events{
			{Name: string(models.StepReceivedRequest), Src: []string{string(models.StepCreated)}, Dst: string(models.StepReceivedRequest)},
			{Name: string(models.StepSentVehicle), Src: []string{string(models.StepReceivedRequest)}, Dst: string(models.StepSentVehicle)},
			{Name: string(models.StepVehicleReceived), Src: []string{string(models.StepSentVehicle)}, Dst: string(models.StepVehicleReceived)},
			{Name: string(models.StepFinished), Src: []string{string(models.StepVehicleReceived)}, Dst: string(models.StepFinished)},
		},
		fsm.Callbacks{},
	)
}

// advanceRow marks one stage done, enforcing the fixed execution order.
func advanceRow(p *models.StepProgress, step models.RequestStep) error {
	machine := newRowMachine(*p)
	if err := machine.Event(context.Background(), string(step)); err != nil {
		return &stock.ValidationError{Reason: "step out of order: row is at " + string(p.Current())}
	}

	switch step {
	case models.StepReceivedRequest:
		p.ReceivedRequest = true
	case models.StepSentVehicle:
		p.SentVehicle = true
	case models.StepVehicleReceived:
		p.VehicleReceived = true
	case models.StepFinished:
		p.Finished = true
	}
	return nil
}
