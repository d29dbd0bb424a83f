package main

import (
	"fmt"

	"demohub/internal/thermo"

	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	var from string

	c := &cobra.Command{
		Use:   "convert <value>",
		Short: "Convert a temperature into the other two units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := thermo.ParseUnit(from)
			if err != nil {
				return err
			}
			readings, err := thermo.ParseAndConvert(args[0], unit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range readings {
				fmt.Fprintf(out, "%s: %s\n", r.Unit.Label(), r.Text)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&from, "from", "f", "celsius", "Input unit: celsius, fahrenheit or kelvin")
	return c
}
