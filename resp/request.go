package resp

// Request is a command ready to be written to a node.
// It owns its Args: once built, neither the request nor its arguments change.
type Request struct {
	// Command is the command name, e.g. FPWRITE.
	Command CmdType

	// Args holds the positional arguments, without the command name.
	Args *Args
}

// NewRequest creates a request and takes ownership of args.
// args is sealed: further appends panic. A nil args means no arguments.
//
// Usage:
//
//	args := resp.NewArgs(2)
//	args.Add("D:{100:1:2}").Add("1,2,3,4")
//	req := resp.NewRequest(resp.CmdFpScan, args)
func NewRequest(cmd CmdType, args *Args) *Request {
	if args == nil {
		args = &Args{}
	}
	args.seal()
	return &Request{
		Command: cmd,
		Args:    args,
	}
}

// Strings returns the command name followed by every argument, as text.
func (r *Request) Strings() []string {
	out := make([]string, 0, 1+r.Args.Len())
	out = append(out, string(r.Command))
	return append(out, r.Args.Strings()...)
}
