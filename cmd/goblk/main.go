// Command goblk mounts an example block device backend onto a Linux NBD
// device node.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "goblk",
		Short: "Mount application-defined block devices over NBD",
		Long:  "goblk drives the Linux NBD kernel module to expose example backends (ramdisk, deadbeef) as real block devices.",
	}

	root.AddCommand(mountCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
