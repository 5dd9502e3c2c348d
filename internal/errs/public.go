package errs

// Public is an error whose message is safe to show to API clients. Kind is
// one of the sentinels above and selects the HTTP status.
type Public struct {
	Kind error
	Msg  string
}

func (e *Public) Error() string { return e.Msg }

func (e *Public) Unwrap() error { return e.Kind }

// New returns a client-facing error of the given kind.
func New(kind error, msg string) error {
	return &Public{Kind: kind, Msg: msg}
}
