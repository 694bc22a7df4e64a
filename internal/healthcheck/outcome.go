package healthcheck

import "strconv"

// Outcome is the result of one probe: either Success with a status code or
// Failure with a reason. Build it with Success or Failure.
type Outcome struct {
	ok     bool
	code   int
	reason string
}

func Success(code int) Outcome {
	return Outcome{ok: true, code: code}
}

func Failure(reason string) Outcome {
	return Outcome{reason: reason}
}

// OK reports whether the endpoint answered at all. Any HTTP status counts.
func (o Outcome) OK() bool {
	return o.ok
}

// StatusCode returns the status code of a successful probe, 0 otherwise.
func (o Outcome) StatusCode() int {
	return o.code
}

// Reason returns the failure reason, or "" for a successful probe.
func (o Outcome) Reason() string {
	return o.reason
}

func (o Outcome) String() string {
	if o.ok {
		return "status=" + strconv.Itoa(o.code)
	}
	return o.reason
}
