package main

import (
	"errors"
	"fmt"

	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/service/auth"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
)

// hashPasswordCommand prints bcrypt hashes for the given passwords, for
// seeding accounts by hand. It needs no config or database.
func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print bcrypt hashes for one or more passwords",
		ArgsUsage: "<password>...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "cost", Value: bcrypt.DefaultCost, Usage: "bcrypt cost"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("at least one password is required")
			}
			cost := c.Int("cost")
			if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
				return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
			}

			hasher := auth.NewBcryptHasher(cost)
			for _, password := range c.Args().Slice() {
				if err := domain.ValidatePassword("password", password); err != nil {
					return fmt.Errorf("password %q: %w", password, err)
				}
				hash, err := hasher.Hash(password)
				if err != nil {
					return fmt.Errorf("hashing password: %w", err)
				}
				fmt.Fprintln(c.App.Writer, hash)
			}
			return nil
		},
	}
}
