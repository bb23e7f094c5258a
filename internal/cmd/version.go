package cmd

import (
	"fmt"
	"runtime"

	"github.com/Alia5/factorygen/internal/codegen/common"
)

type Version struct{}

// Run is called by Kong when the version command is executed.
func (v *Version) Run() error {
	version, err := common.GetVersion()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "factorygen %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
