// cmd/foldrun/main.go
package main

import (
	"foldrun/internal/app"
	"foldrun/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
