package cli

import (
	"context"
	"fmt"
)

// Represents the 'mpimage show' command.
type ShowCmd struct {
	Recipe string            `short:"r" help:"Recipe file. Defaults to the built-in MPI recipe." type:"existingfile" optional:""`
	Set    map[string]string `help:"Override recipe variables (name=value)." placeholder:"NAME=VALUE"`
}

// Executes the show command.
//
// Prints the recipe after variable overrides, expansion, and validation,
// so the exact steps a build would run can be reviewed.
func (c *ShowCmd) Run(ctx context.Context) error {
	r, err := loadRecipe(c.Recipe, c.Set)
	if err != nil {
		return err
	}

	out, err := r.Marshal()
	if err != nil {
		return err
	}

	fmt.Print(string(out))
	return nil
}
