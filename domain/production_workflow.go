package domain

import "shopfloor/domain/state"

const (
	ActionPause    = "pause"
	ActionResume   = "resume"
	ActionFinish   = "finish"
	ActionContinue = "continue"
	ActionRevert   = "revert"
)

var (
	StateInProgress = state.State{Name: string(StatusInProgress), Category: state.InProcess}
	StatePaused     = state.State{Name: string(StatusPaused), Category: state.OnHold}
	StateFinished   = state.State{Name: string(StatusFinished), Category: state.Done}
)

//              IN_PROGRESS     PAUSED       FINISHED
// IN_PROGRESS  -               pause        finish, continue
// PAUSED       resume          -            finish, continue
// FINISHED     X               revert       -
var ProductionStateMachine = state.NewStateMachine(
	[]state.State{StateInProgress, StatePaused, StateFinished},
	[]state.Transition{
		{Name: ActionPause, From: StateInProgress, To: StatePaused},
		{Name: ActionResume, From: StatePaused, To: StateInProgress},
		{Name: ActionFinish, From: StateInProgress, To: StateFinished},
		{Name: ActionFinish, From: StatePaused, To: StateFinished},
		{Name: ActionContinue, From: StateInProgress, To: StateFinished},
		{Name: ActionContinue, From: StatePaused, To: StateFinished},
		{Name: ActionRevert, From: StateFinished, To: StatePaused},
	})
