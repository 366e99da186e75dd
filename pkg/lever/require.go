package lever

import (
	"lever/core"
)

// Require returns code unless cond holds. Policy hooks chain these so every
// denial carries a specific rejection code.
func Require(cond bool, code core.ErrorCode) error {
	if cond {
		return nil
	}

	return code
}
