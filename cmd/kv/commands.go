package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/wildstrudel/nosqlite/cmd/util"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := util.ParseValue(args[1])
			if err := col.Set(key, value); err != nil {
				return err
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]...",
		Short: "Reads the values for one or more keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				// single key: strict lookup
				value, err := col.ItemGet(args[0])
				if err != nil {
					return err
				}
				fmt.Println(util.FormatValue(value))
				return nil
			}

			// multiple keys: tolerant batch lookup, missing keys are omitted
			values, err := col.Get(args...)
			if err != nil {
				return err
			}
			for _, key := range args {
				if value, ok := values[key]; ok {
					fmt.Printf("%s=%s\n", key, util.FormatValue(value))
				}
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]...",
		Short: "Deletes one or more key value pairs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				// single key: strict delete
				if err := col.ItemDelete(args[0]); err != nil {
					return err
				}
				fmt.Println("delete successfully")
				return nil
			}

			// multiple keys: tolerant batch delete
			if err := col.Delete(args...); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if ok, err := col.Contains(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v\n", key, ok)
			}
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys of the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := col.Keys()
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	}
	sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Prints the number of entries in the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := col.Size()
			if err != nil {
				return err
			}
			fmt.Println(size)
			return nil
		},
	}
	itemsCmd = &cobra.Command{
		Use:   "items",
		Short: "Prints all entries of the collection in storage order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return col.Items(func(key string, value any) error {
				fmt.Printf("%s=%s\n", key, util.FormatValue(value))
				return nil
			})
		},
	}
	byDateCmd = &cobra.Command{
		Use:   "bydate",
		Short: "Prints all entries ordered by modification time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reverse, _ := cmd.Flags().GetBool("reverse")
			return col.IterByDateWithTime(reverse, func(key string, value any, modified time.Time) error {
				fmt.Printf("%s %s=%s\n", modified.Format("2006-01-02 15:04:05"), key, util.FormatValue(value))
				return nil
			})
		},
	}
	loadCmd = &cobra.Command{
		Use:   "load [file]",
		Short: "Loads all entries of a JSON object file into the collection as one batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var entries map[string]any
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("file must contain a JSON object: %w", err)
			}

			if err := col.SetAll(entries); err != nil {
				return err
			}
			fmt.Printf("loaded %d entries\n", len(entries))
			return nil
		},
	}
)

func init() {
	byDateCmd.Flags().Bool("reverse", false, util.WrapString("newest entries first"))
}
