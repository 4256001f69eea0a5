// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/Azure/swagger-to-sdk/cmd/swaggertosdk"

func main() {
	cmd.Execute()
}
