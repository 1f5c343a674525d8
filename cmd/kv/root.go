package kv

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wildstrudel/nosqlite/cmd/util"
	"github.com/wildstrudel/nosqlite/lib/db"
)

var (
	database *db.Database
	col      *db.Collection

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value operations on a collection",
		PersistentPreRunE:  setupCollection,
		PersistentPostRunE: teardownCollection,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Flags
	KeyValueCommands.PersistentFlags().String("collection", "default", util.WrapString("name of the collection to operate on"))

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(sizeCmd)
	KeyValueCommands.AddCommand(itemsCmd)
	KeyValueCommands.AddCommand(byDateCmd)
	KeyValueCommands.AddCommand(loadCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupCollection opens the database and the target collection
func setupCollection(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	database, err = util.OpenDatabase()
	if err != nil {
		return err
	}

	col, err = database.GetOrCreateCollection(viper.GetString("collection"))
	if err != nil {
		_ = database.Close()
		return err
	}
	return nil
}

// teardownCollection closes the database after the subcommand ran
func teardownCollection(_ *cobra.Command, _ []string) error {
	return database.Close()
}
