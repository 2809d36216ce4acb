// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/schl3ck/scriptup/cmd/scriptup"

func main() {
	cmd.Execute()
}
