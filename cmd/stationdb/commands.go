package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hypermaq/stationdb"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new station database",
	Long: `Create a new station database with all tables, seeded with the default
settings and the reference measurement protocol. Refuses to overwrite an
existing file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("db")
		if path == "" {
			return fmt.Errorf("no database given, use --db or STATIONDB_DB")
		}
		noDefaults, _ := cmd.Flags().GetBool("no-defaults")
		if err := stationdb.Create(path, nil, !noDefaults); err != nil {
			return err
		}
		fmt.Printf("Created station database %s\n", path)
		return nil
	},
}

var settingCmd = &cobra.Command{
	Use:   "setting",
	Short: "Read or write device settings",
}

var settingGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		value, err := db.Setting(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var settingSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a setting, creating it if needed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.SetSetting(args[0], args[1])
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and feed the task queue",
}

var queueAddCmd = &cobra.Command{
	Use:   "add ACTION",
	Short: "Queue a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		priority, _ := cmd.Flags().GetInt("priority")
		options, _ := cmd.Flags().GetString("options")
		if err := db.AddTask(args[0], priority, options); err != nil {
			return err
		}
		id, err := db.LastID(stationdb.TableQueue)
		if err != nil {
			return err
		}
		fmt.Printf("Queued task %d (%s)\n", id, args[0])
		return nil
	},
}

var queueNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next pending task without handling it",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		onlyHigh, _ := cmd.Flags().GetBool("high")
		task, err := db.NextTask(onlyHigh)
		if err != nil {
			return err
		}
		if task == nil {
			fmt.Println("No pending tasks")
			return nil
		}
		fmt.Printf("id=%d priority=%d action=%s options=%q fails=%d\n",
			task.ID, task.Priority, task.Action, task.Options, task.Fails)
		return nil
	},
}

var queueCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of pending tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		onlyHigh, _ := cmd.Flags().GetBool("high")
		count, err := db.PendingTasks(onlyHigh)
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Work with the station log",
}

var logAddCmd = &cobra.Command{
	Use:   "add MESSAGE",
	Short: "Append an entry to the station log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		source, _ := cmd.Flags().GetString("source")
		level, _ := cmd.Flags().GetString("level")
		return db.AddLog(args[0], source, level)
	},
}

var logTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the most recent log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := db.RecentLogs(limit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s %-8s %-12s %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Level, e.Source, e.Message)
		}
		return nil
	},
}

var logPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete log entries older than the given number of days",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		days, _ := cmd.Flags().GetInt("days")
		deleted, err := db.DeleteOldLogs(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d log entries\n", deleted)
		return nil
	},
}

var protocolCmd = &cobra.Command{
	Use:   "protocol",
	Short: "Print the measurement protocol",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		steps, err := db.Protocol()
		if err != nil {
			return err
		}
		for _, s := range steps {
			fmt.Printf("%2d: instrument=%s zenith=%d azimuth=%d repeat=%d wait=%d\n",
				s.ID, s.Instrument, s.Zenith, s.Azimuth, s.Repeat, s.Wait)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export TARGET TABLE[:START[:STOP]]...",
	Short: "Export tables into a new database file",
	Long: `Export the named tables into a freshly created database file. Each table
may carry an id range: START is inclusive, STOP exclusive. The target file
must not exist yet.

  stationdb export backup.db logs:100:200 measurements:100 settings`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ranges := make([]stationdb.TableRange, 0, len(args)-1)
		for _, arg := range args[1:] {
			r, err := parseTableRange(arg)
			if err != nil {
				return err
			}
			ranges = append(ranges, r)
		}
		if err := db.Export(args[0], ranges); err != nil {
			return err
		}
		fmt.Printf("Exported %d table(s) to %s\n", len(ranges), args[0])
		return nil
	},
}

var vacuumCmd = &cobra.Command{
	Use:   "vacuum",
	Short: "Reclaim free pages in the database file",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Vacuum()
	},
}

// parseTableRange parses "table", "table:start" or "table:start:stop".
func parseTableRange(arg string) (stationdb.TableRange, error) {
	parts := strings.Split(arg, ":")
	if len(parts) > 3 {
		return stationdb.TableRange{}, fmt.Errorf("invalid table range %q", arg)
	}

	r := stationdb.TableRange{Table: parts[0]}
	for i, name := range []string{"start", "stop"} {
		if len(parts) <= i+1 || parts[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(parts[i+1])
		if err != nil {
			return stationdb.TableRange{}, fmt.Errorf("invalid %s id in %q: %w", name, arg, err)
		}
		if i == 0 {
			r.Start = n
		} else {
			r.Stop = n
		}
	}
	return r, nil
}

func init() {
	initCmd.Flags().Bool("no-defaults", false, "do not seed default settings and protocol")

	settingCmd.AddCommand(settingGetCmd, settingSetCmd)

	queueAddCmd.Flags().Int("priority", stationdb.PriorityNormal, "task priority (1 = high, 2 = normal)")
	queueAddCmd.Flags().String("options", "", "option string passed to the task handler")
	queueNextCmd.Flags().Bool("high", false, "only consider high-priority tasks")
	queueCountCmd.Flags().Bool("high", false, "only count high-priority tasks")
	queueCmd.AddCommand(queueAddCmd, queueNextCmd, queueCountCmd)

	logAddCmd.Flags().String("source", "cli", "module name to log under")
	logAddCmd.Flags().String("level", stationdb.LevelInfo, "severity level")
	logTailCmd.Flags().Int("limit", 20, "number of entries to print")
	logPruneCmd.Flags().Int("days", 30, "age threshold in days")
	logCmd.AddCommand(logAddCmd, logTailCmd, logPruneCmd)
}
