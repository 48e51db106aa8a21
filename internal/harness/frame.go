package harness

import "github.com/itstheanurag/codejudge/internal/protocol"

const (
	resultPrefix = protocol.ResultPrefix
	separator    = protocol.Separator
)
