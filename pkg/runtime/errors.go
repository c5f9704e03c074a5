package runtime

import (
	"errors"
	"fmt"
)

// Thrown carries a scripted exception across host boundaries. The evaluator
// converts it back into a throw signal at every thunk boundary, so a native
// function returning a Thrown error is observable by a scripted try block.
type Thrown struct {
	Value Value
}

func (t Thrown) Error() string {
	if obj, ok := t.Value.(*ObjectValue); ok && obj.Class == "Error" {
		name, _ := obj.OwnProperty("name")
		message, _ := obj.OwnProperty("message")
		if name != nil && message != nil {
			return fmt.Sprintf("%s: %s", ToString(name.Value), ToString(message.Value))
		}
	}
	return ToString(t.Value)
}

// Raise wraps a runtime value as a Thrown error.
func Raise(value Value) error {
	return Thrown{Value: value}
}

// NewError builds a plain error object with name and message slots.
func NewError(name string, message string) *ObjectValue {
	obj := NewObject()
	obj.Class = "Error"
	obj.Set("name", String(name))
	obj.Set("message", String(message))
	return obj
}

// RaiseError raises a freshly built error object.
func RaiseError(name string, format string, args ...any) error {
	return Thrown{Value: NewError(name, fmt.Sprintf(format, args...))}
}

// ThrownValue extracts the scripted value from an error, converting plain Go
// errors into generic Error objects.
func ThrownValue(err error) Value {
	var thrown Thrown
	if errors.As(err, &thrown) {
		return thrown.Value
	}
	return NewError("Error", err.Error())
}
