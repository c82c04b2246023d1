package watcher

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// SendNotification raises a desktop notification, degrading to stdout when
// the platform has no notification daemon.
func SendNotification(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		fmt.Printf("%s: %s\n", title, message)
	}
}
