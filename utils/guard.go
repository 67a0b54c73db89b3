package utils

// Guard manages cleanup for functions that acquire a resource (a sub-frame, an
// exclusive bitmap write) and may bail out before handing it off. Correct usage
// follows this pattern:
//
//	guard := NewGuard(release)
//	defer guard.OnFail()
//	if (error) { return error } // release runs via the defer
//	release()
//	guard.Success()
//
// The cleanup runs at most once: either explicitly on the success path or via
// the deferred OnFail, never both.
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that runs onFailCleanup unless Success is called first.
func NewGuard(onFailCleanup func()) *Guard {
	ret := &Guard{}
	ret.OnFail = func() {
		if !ret.success {
			onFailCleanup()
		}
	}
	return ret
}

// Success declares the function succeeded and the failure cleanup does not need
// to be executed.
func (guard *Guard) Success() {
	guard.success = true
}
