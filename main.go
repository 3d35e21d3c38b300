// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/cish/cish/cmd/cish"

func main() {
	cmd.Execute()
}
