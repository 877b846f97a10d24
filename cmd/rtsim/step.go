package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

// runStep is the process-level next_state: one JSON state in, one out.
func runStep(cmd *cobra.Command, args []string) error {
	_, logger, driver, err := setup(cmd)
	if err != nil {
		return err
	}

	var state []float64
	if stateArg == "-" {
		if err := json.NewDecoder(cmd.InOrStdin()).Decode(&state); err != nil {
			return fmt.Errorf("read state from stdin: %w", err)
		}
	} else if err := json.Unmarshal([]byte(stateArg), &state); err != nil {
		return fmt.Errorf("parse state: %w", err)
	}

	var params []float64
	if err := json.NewDecoder(strings.NewReader(paramsArg)).Decode(&params); err != nil {
		return fmt.Errorf("parse params: %w", err)
	}

	next, err := driver.Next(args[0], state, dt, params)
	if err != nil {
		return err
	}

	stats := driver.LastStats()
	level.Info(logger).Log("msg", "step", "model", args[0], "dt", dt, "accepted", stats.Accepted, "rejected", stats.Rejected)

	return json.NewEncoder(cmd.OutOrStdout()).Encode(next)
}
