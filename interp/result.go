package interp

// Signal is the evaluator's five-field result carrier. Every visit method
// returns one; should_return() style checks replace host exceptions for the
// four orthogonal control-flow signals (error, return, continue, break) so
// that return/break/continue are never confused with a runtime error.
type Signal struct {
	Value          Value
	Err            *Diagnostic
	ReturnValue    Value
	HasReturn      bool
	ShouldContinue bool
	ShouldBreak    bool
}

func ok(v Value) Signal { return Signal{Value: v} }

func errSignal(d *Diagnostic) Signal { return Signal{Err: d} }

func returnSignal(v Value) Signal { return Signal{ReturnValue: v, HasReturn: true} }

func continueSignal() Signal { return Signal{ShouldContinue: true} }

func breakSignal() Signal { return Signal{ShouldBreak: true} }

// ShouldPropagate is true when any non-value signal is set and the caller
// must stop evaluating siblings and bubble this Signal upward unchanged.
func (s Signal) ShouldPropagate() bool {
	return s.Err != nil || s.HasReturn || s.ShouldContinue || s.ShouldBreak
}
