// SPDX-License-Identifier: MPL-2.0

package main

import cmd "devkit-cli/cmd/devkit"

func main() {
	cmd.Execute()
}
