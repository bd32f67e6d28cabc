package auth

import (
	"authlink/models"
	"authlink/services/gateway"
)

// ResultType is the outcome of a flow operation.
type ResultType string

const (
	ResultSuccess ResultType = "success"
	ResultError   ResultType = "error"
	// ResultIgnored means the operation was invoked in a state where it does nothing.
	ResultIgnored ResultType = "ignored"
)

// ErrorKind classifies a ResultError.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindGateway    ErrorKind = "gateway"
	KindInFlight   ErrorKind = "in-flight"
)

// Result is what every flow operation reports back to its caller.
type Result struct {
	Type    ResultType        `json:"type"`
	Kind    ErrorKind         `json:"kind,omitempty"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Notices []models.Notice   `json:"notices,omitempty"`
	Session *models.Session   `json:"-"`
	Flow    *models.PhoneFlow `json:"-"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Type == ResultSuccess
}

func succeeded(sess *models.Session, flow *models.PhoneFlow, message string) Result {
	r := Result{Type: ResultSuccess, Session: sess, Flow: flow}
	if message != "" {
		r.Notices = []models.Notice{{Type: models.NoticeSuccess, Message: message}}
	}
	return r
}

func invalid(message string) Result {
	return Result{
		Type:    ResultError,
		Kind:    KindValidation,
		Message: message,
		Notices: []models.Notice{{Type: models.NoticeInfo, Message: message}},
	}
}

func inFlight() Result {
	return Result{
		Type:    ResultError,
		Kind:    KindInFlight,
		Message: MsgInFlight,
		Notices: []models.Notice{{Type: models.NoticeInfo, Message: MsgInFlight}},
	}
}

func gatewayFailure(err error) Result {
	code := gateway.CodeOf(err)
	message := FriendlyMessage(code)
	return Result{
		Type:    ResultError,
		Kind:    KindGateway,
		Code:    code,
		Message: message,
		Notices: []models.Notice{{Type: models.NoticeError, Message: message}},
	}
}

func ignored() Result {
	return Result{Type: ResultIgnored}
}
