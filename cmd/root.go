package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wildstrudel/nosqlite/cmd/col"
	"github.com/wildstrudel/nosqlite/cmd/kv"
	"github.com/wildstrudel/nosqlite/cmd/util"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "nosqlite",
		Short: "single-file key-value database",
		Long: fmt.Sprintf(`nosqlite (v%s)

A single-file key-value database built on sqlite, organizing data
into named collections with dictionary-like semantics.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of nosqlite",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("nosqlite v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(col.CollectionCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "db"
	RootCmd.PersistentFlags().String(key, "nosqlite.db", util.WrapString("path to the database file"))
	key = "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (binary, gob)"))
	key = "verbose"
	RootCmd.PersistentFlags().Bool(key, false, util.WrapString("log debug events to stderr"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
