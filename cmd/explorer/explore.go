package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"contractScope/internal/abiargs"
	"contractScope/internal/explorer"
)

// runWithApp builds the app, runs fn under a signal-aware context and
// prints its result as JSON.
func runWithApp(cmd *cobra.Command, withChain bool, fn func(ctx context.Context, a *app) (interface{}, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, withChain)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandTimeout(ctx)
	defer cancel()

	result, err := fn(ctx, a)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func newTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tx <hash>",
		Short: "Fetch a transaction and decode its input and logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, true, func(ctx context.Context, a *app) (interface{}, error) {
				return a.service.Transaction(ctx, args[0])
			})
		},
	}
}

func newBlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block [number|latest]",
		Short: "Fetch a block and decode transactions sent to known contracts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var number *big.Int
			if len(args) == 1 {
				var err error
				if number, err = parseBlockNumber(args[0]); err != nil {
					return err
				}
			}
			return runWithApp(cmd, true, func(ctx context.Context, a *app) (interface{}, error) {
				return a.service.Block(ctx, number)
			})
		},
	}
}

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Search logs and decode them with the emitting contract's ABI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fromFlag, _ := cmd.Flags().GetString("from-block")
			toFlag, _ := cmd.Flags().GetString("to-block")
			address, _ := cmd.Flags().GetString("address")
			event, _ := cmd.Flags().GetString("event")

			from, err := parseBlockNumber(fromFlag)
			if err != nil {
				return err
			}
			to, err := parseBlockNumber(toFlag)
			if err != nil {
				return err
			}
			return runWithApp(cmd, true, func(ctx context.Context, a *app) (interface{}, error) {
				return a.service.Logs(ctx, explorer.LogQuery{FromBlock: from, ToBlock: to, Address: address, Event: event})
			})
		},
	}
	cmd.Flags().String("from-block", "latest", "first block (number or latest)")
	cmd.Flags().String("to-block", "latest", "last block (number or latest)")
	cmd.Flags().String("address", "", "emitting address, defaults to the selected contract")
	cmd.Flags().String("event", "", "event name of the selected contract's ABI")
	return cmd
}

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <function>",
		Short: "Call a read function of the selected contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, _ := cmd.Flags().GetStringArray("arg")
			blockFlag, _ := cmd.Flags().GetString("block")

			values, err := parseArgPairs(pairs)
			if err != nil {
				return err
			}
			block, err := parseBlockNumber(blockFlag)
			if err != nil {
				return err
			}
			return runWithApp(cmd, true, func(ctx context.Context, a *app) (interface{}, error) {
				return a.service.Read(ctx, explorer.ReadRequest{
					Contract: a.service.Selection().Snapshot().Contract,
					Function: args[0],
					Args:     values,
					Block:    block,
				})
			})
		},
	}
	cmd.Flags().StringArray("arg", nil, "function argument as name=value, repeatable")
	cmd.Flags().String("block", "latest", "block to call at (number or latest)")
	return cmd
}

func newContractsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "List the selected deployment's contracts that have an ABI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, false, func(_ context.Context, a *app) (interface{}, error) {
				return a.service.Contracts(), nil
			})
		},
	}
}

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <contract>",
		Short: "Show which ABI a contract name binds to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, false, func(_ context.Context, a *app) (interface{}, error) {
				match := a.service.Match(args[0])
				if match == nil {
					return nil, fmt.Errorf("%w: %s", explorer.ErrNoAbi, args[0])
				}
				return match, nil
			})
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <type> <value>",
		Short: "Validate a value against a Solidity type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			file, _ := cmd.Flags().GetString("log-file")
			logger, err := newLogger(level, file)
			if err != nil {
				return err
			}
			defer logger.Sync()

			result := abiargs.ValidateSolidityType(args[1], args[0], logger)
			return printJSON(cmd, struct {
				Type        string `json:"type"`
				Value       string `json:"value"`
				Placeholder string `json:"placeholder"`
				abiargs.Validation
			}{
				Type:        args[0],
				Value:       args[1],
				Placeholder: abiargs.PlaceholderForType(args[0]),
				Validation:  result,
			})
		},
	}
}

// parseBlockNumber accepts a decimal or 0x number; "" and "latest" mean nil.
func parseBlockNumber(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "latest") {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(value, 0)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid block number: %s", value)
	}
	return n, nil
}

func parseArgPairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid argument %q, expected name=value", pair)
		}
		out[name] = value
	}
	return out, nil
}
