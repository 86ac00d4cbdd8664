// SPDX-License-Identifier: MPL-2.0

// Command khatdev builds, inspects and verifies Khatulistiwa OS application
// containers.
package main

import cmd "github.com/khatulistiwa/khatdev/cmd/khatdev"

func main() {
	cmd.Execute()
}
