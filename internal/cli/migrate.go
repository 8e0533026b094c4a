package cli

import (
	"fmt"

	"class-booking/internal/infra/docstore"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	mctx, cancel := ctx.Timeout()
	defer cancel()
	applied, err := docstore.Migrate(mctx, ctx.Config, ctx.Logger)
	if err != nil {
		return err
	}
	if applied == 0 {
		fmt.Printf("Schema for %s is up to date.\n", ctx.Config.Store.Driver)
		return nil
	}
	fmt.Printf("Applied %d migration(s).\n", applied)
	return nil
}
