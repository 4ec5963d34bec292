package mem

import "github.com/dacapoday/finarc"

var ErrClosed = finarc.ErrClosed
