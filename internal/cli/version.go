package cli

import (
	"context"
	"fmt"

	"github.com/fabricforge/mpimage/internal"
)

// Represents the 'mpimage version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
