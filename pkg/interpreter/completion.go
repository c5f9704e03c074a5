package interpreter

import (
	"fmt"

	"skim/interpreter-go/pkg/runtime"
)

// completionKind tags the control-flow signal a thunk hands back to its
// enclosing thunk. completionValue is the ordinary arm; everything else
// requests a non-local transfer.
type completionKind int

const (
	completionValue completionKind = iota
	completionEmpty
	completionBreak
	completionContinue
	completionBreakLabel
	completionContinueLabel
	completionReturn
	completionThrow
	completionDefaultCase
)

func (k completionKind) String() string {
	switch k {
	case completionValue:
		return "value"
	case completionEmpty:
		return "empty"
	case completionBreak:
		return "break"
	case completionContinue:
		return "continue"
	case completionBreakLabel:
		return "break_label"
	case completionContinueLabel:
		return "continue_label"
	case completionReturn:
		return "return"
	case completionThrow:
		return "throw"
	case completionDefaultCase:
		return "default_case"
	default:
		return fmt.Sprintf("unknown_completion_%d", int(k))
	}
}

// completion is a tagged value distinguishable from any user value. Statement
// thunks that short-circuit enclosing statements return one; an enclosing
// thunk that catches a signal does so by tag comparison.
type completion struct {
	kind  completionKind
	value runtime.Value
	label string
}

var emptyCompletion = completion{kind: completionEmpty}

func valueCompletion(v runtime.Value) completion {
	return completion{kind: completionValue, value: v}
}

func returnCompletion(v runtime.Value) completion {
	return completion{kind: completionReturn, value: v}
}

func throwCompletion(v runtime.Value) completion {
	return completion{kind: completionThrow, value: v}
}

// hostThrow converts a host-side error into a throw signal so it becomes
// observable by scripted try blocks.
func hostThrow(err error) completion {
	return throwCompletion(runtime.ThrownValue(err))
}

// isAbrupt reports whether the completion interrupts sequential execution.
func (c completion) isAbrupt() bool {
	switch c.kind {
	case completionValue, completionEmpty:
		return false
	default:
		return true
	}
}
