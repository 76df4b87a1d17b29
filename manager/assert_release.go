//go:build !debugchecks

package manager

func assert(err error) bool {
	return err == nil
}
