// Package stage provides the generic building blocks
// for ingress, handler and egress pipeline stages.
package stage

import (
	"github.com/openheavy/j1939tel/internal/message"
)

type msg = message.Message
