// Package errors provides custom error types.

package errors

type (
	ServiceFoundNilArgument struct {
		Msg string
	}
	ServiceInvalidInput struct {
		Msg string
	}
	ServiceForbidden struct {
		Msg string
	}
)

func (e *ServiceFoundNilArgument) Error() string {
	return e.Msg
}

func (e *ServiceInvalidInput) Error() string {
	return e.Msg
}

func (e *ServiceForbidden) Error() string {
	return e.Msg
}
