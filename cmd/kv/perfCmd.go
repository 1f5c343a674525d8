package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wildstrudel/nosqlite/cmd/util"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for a database file",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix   = "__test"
	perfOps         = 1000
	perfKeySpread   = 100
	perfValueSizeKB = 1
	perfSkip        = make([]string, 0)
)

func init() {
	// add flags
	key := "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Number of operations per benchmark"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 1, util.WrapString("Size of the test values (in KB)"))
	key = "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfOps = viper.GetInt("ops")
	perfKeySpread = viper.GetInt("keys")
	perfValueSizeKB = viper.GetInt("value-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func shouldSkip(name string) bool {
	for _, s := range perfSkip {
		if s == name {
			return true
		}
	}
	return false
}

func perfKey(i int) string {
	return fmt.Sprintf("%s/%d", perfKeyPrefix, i%perfKeySpread)
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for nosqlite database files")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Database:   %s\n", viper.GetString("db"))
	fmt.Printf("Collection: %s\n", col.Name())
	fmt.Printf("Serializer: %s\n", viper.GetString("serializer"))
	fmt.Printf("Operations: %d\n", perfOps)
	fmt.Printf("Keys:       %d\n", perfKeySpread)
	fmt.Printf("Value size: %d KB\n", perfValueSizeKB)
	fmt.Println()

	fmt.Println("starting tests...")

	value := strings.Repeat("x", perfValueSizeKB*1024)
	registry := metrics.NewRegistry()

	// cleanup all test keys at the end
	defer func() {
		keys := make([]string, 0, perfKeySpread)
		for i := 0; i < perfKeySpread; i++ {
			keys = append(keys, perfKey(i))
		}
		if err := col.Delete(keys...); err != nil {
			fmt.Printf("error cleaning up test keys: %v\n", err)
		}
	}()

	if !shouldSkip("set") {
		timer := metrics.NewRegisteredTimer("set", registry)
		for i := 0; i < perfOps; i++ {
			key := perfKey(i)
			timer.Time(func() {
				if err := col.Set(key, value); err != nil {
					fmt.Printf("(set) - error setting key: %v\n", err)
				}
			})
		}
		printResult("set", timer)
	}

	if !shouldSkip("set-batch") {
		batch := make(map[string]any, perfKeySpread)
		for i := 0; i < perfKeySpread; i++ {
			batch[perfKey(i)] = value
		}
		timer := metrics.NewRegisteredTimer("set-batch", registry)
		for i := 0; i < perfOps/perfKeySpread+1; i++ {
			timer.Time(func() {
				if err := col.SetAll(batch); err != nil {
					fmt.Printf("(set-batch) - error setting batch: %v\n", err)
				}
			})
		}
		printResult("set-batch", timer)
	}

	if !shouldSkip("get") {
		timer := metrics.NewRegisteredTimer("get", registry)
		for i := 0; i < perfOps; i++ {
			key := perfKey(i)
			timer.Time(func() {
				if _, err := col.ItemGet(key); err != nil {
					fmt.Printf("(get) - error getting key: %v\n", err)
				}
			})
		}
		printResult("get", timer)
	}

	if !shouldSkip("has") {
		timer := metrics.NewRegisteredTimer("has", registry)
		for i := 0; i < perfOps; i++ {
			key := perfKey(i)
			timer.Time(func() {
				if _, err := col.Contains(key); err != nil {
					fmt.Printf("(has) - error checking key: %v\n", err)
				}
			})
		}
		printResult("has", timer)
	}

	if !shouldSkip("has-not") {
		timer := metrics.NewRegisteredTimer("has-not", registry)
		for i := 0; i < perfOps; i++ {
			key := fmt.Sprintf("%s/has-not-%d", perfKeyPrefix, i)
			timer.Time(func() {
				if _, err := col.Contains(key); err != nil {
					fmt.Printf("(has-not) - error checking key: %v\n", err)
				}
			})
		}
		printResult("has-not", timer)
	}

	if !shouldSkip("delete") {
		timer := metrics.NewRegisteredTimer("delete", registry)
		for i := 0; i < perfOps; i++ {
			key := perfKey(i)
			timer.Time(func() {
				// tolerant delete: most iterations hit an already-deleted key
				if err := col.Delete(key); err != nil {
					fmt.Printf("(delete) - error deleting key: %v\n", err)
				}
			})
		}
		printResult("delete", timer)
	}

	// Optionally export results as CSV
	if path := viper.GetString("csv"); path != "" {
		if err := exportCSV(path, registry); err != nil {
			return fmt.Errorf("error exporting CSV: %w", err)
		}
		fmt.Printf("results saved to %s\n", path)
	}

	return nil
}

func printResult(name string, timer metrics.Timer) {
	fmt.Printf("%-10s %8d ops   mean %10v   p95 %10v   %10.0f ops/s\n",
		name,
		timer.Count(),
		time.Duration(int64(timer.Mean())),
		time.Duration(int64(timer.Percentile(0.95))),
		timer.RateMean(),
	)
}

func exportCSV(path string, registry metrics.Registry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"benchmark", "ops", "mean_ns", "p95_ns", "ops_per_sec"}); err != nil {
		return err
	}

	var writeErr error
	registry.Each(func(name string, i any) {
		timer, ok := i.(metrics.Timer)
		if !ok || writeErr != nil {
			return
		}
		writeErr = w.Write([]string{
			name,
			strconv.FormatInt(timer.Count(), 10),
			strconv.FormatInt(int64(timer.Mean()), 10),
			strconv.FormatInt(int64(timer.Percentile(0.95)), 10),
			strconv.FormatFloat(timer.RateMean(), 'f', 2, 64),
		})
	})
	return writeErr
}
