package batch

import "reabatch/internal/reaper"

// Failure describes a run that ended before REAPER was launched.
type Failure struct {
	Kind    string
	Stage   string
	Message string
	// Informational marks outcomes such as "nothing to process" that are not
	// errors.
	Informational bool
}

// Observer receives run events. Calls come from the goroutine executing Run.
type Observer interface {
	Progress(text string)
	Result(result reaper.Result)
	Failure(failure Failure)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	OnProgress func(string)
	OnResult   func(reaper.Result)
	OnFailure  func(Failure)
}

func (o ObserverFuncs) Progress(text string) {
	if o.OnProgress != nil {
		o.OnProgress(text)
	}
}

func (o ObserverFuncs) Result(result reaper.Result) {
	if o.OnResult != nil {
		o.OnResult(result)
	}
}

func (o ObserverFuncs) Failure(failure Failure) {
	if o.OnFailure != nil {
		o.OnFailure(failure)
	}
}
