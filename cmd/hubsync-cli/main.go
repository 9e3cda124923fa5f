package main

import (
	"hubsync-backend/cmd/hubsync-cli/commands"
	"hubsync-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
