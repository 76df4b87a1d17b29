//go:build debugchecks

package fsm

// assert panics with err when built with -tags debugchecks. Release
// builds (assert_release.go) instead reject the request and continue,
// per §4.7/§7.
func assert(err error) bool {
	if err != nil {
		panic(err)
	}
	return err == nil
}
