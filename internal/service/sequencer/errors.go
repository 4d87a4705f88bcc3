package sequencer

import (
	"fmt"

	"meshrepeater/pkg/meshcli"
)

// SendError - команда с индексом Index не была передана; последующие не отправлялись.
type SendError struct {
	Index   int
	Command string
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sequencer: команда #%d (%s) не отправлена: %v", e.Index+1, meshcli.Redact(e.Command), e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
