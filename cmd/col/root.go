package col

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wildstrudel/nosqlite/cmd/util"
	"github.com/wildstrudel/nosqlite/lib/db"
)

var (
	database *db.Database

	// CollectionCommands represents the collection command group
	CollectionCommands = &cobra.Command{
		Use:                "col",
		Short:              "Manage the collections of a database file",
		PersistentPreRunE:  setupDatabase,
		PersistentPostRunE: teardownDatabase,
	}

	lsCmd = &cobra.Command{
		Use:   "ls",
		Short: "Lists all collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := database.CollectionNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
	createCmd = &cobra.Command{
		Use:   "create [name]",
		Short: "Creates a collection (no-op if it already exists)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := database.GetOrCreateCollection(args[0]); err != nil {
				return err
			}
			fmt.Println("created successfully")
			return nil
		},
	}
	dropCmd = &cobra.Command{
		Use:   "drop [name]",
		Short: "Drops a collection and all its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.DropCollection(args[0]); err != nil {
				return err
			}
			fmt.Println("dropped successfully")
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints metadata about the database file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := database.Info()
			if err != nil {
				return err
			}
			fmt.Printf("path:        %s\n", info.Path)
			fmt.Printf("size:        %d bytes\n", info.SizeBytes)
			fmt.Printf("collections: %d\n", info.Collections)
			return nil
		},
	}
	metricsCmd = &cobra.Command{
		Use:   "metrics",
		Short: "Prints the operation counters in Prometheus text format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database.WriteMetrics(os.Stdout)
			return nil
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add subcommands
	CollectionCommands.AddCommand(lsCmd)
	CollectionCommands.AddCommand(createCmd)
	CollectionCommands.AddCommand(dropCmd)
	CollectionCommands.AddCommand(infoCmd)
	CollectionCommands.AddCommand(metricsCmd)
}

// setupDatabase opens the configured database file
func setupDatabase(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	database, err = util.OpenDatabase()
	return err
}

// teardownDatabase closes the database after the subcommand ran
func teardownDatabase(_ *cobra.Command, _ []string) error {
	return database.Close()
}
