//go:build debugchecks

package manager

func assert(err error) bool {
	if err != nil {
		panic(err)
	}
	return err == nil
}
