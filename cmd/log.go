package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/jupwallet/internal/audit"
	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
	"github.com/PolarWolf314/jupwallet/internal/ui"
	"github.com/PolarWolf314/jupwallet/internal/utils"
	"github.com/PolarWolf314/jupwallet/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logWallet    string
	logFailed    bool
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation (comma-separated)")
	logCmd.Flags().StringVar(&logWallet, "wallet", "", "filter by wallet id, name or address")
	logCmd.Flags().BoolVar(&logFailed, "failed", false, "show failed attempts only")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logWallet = ""
	logFailed = false
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log of keystore operations.

Shows which operations ran, when, and whether they failed. Private keys
and passwords are never recorded.

Examples:
  jupwallet log                           # View full log
  jupwallet log -n 10                     # Last 10 entries
  jupwallet log --reverse                 # Most recent first
  jupwallet log --operation wallet.export # Filter by operation
  jupwallet log --failed                  # Failed password attempts and errors
  jupwallet log --since 2026-01-01        # Filter by date
  jupwallet log --json                    # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	result, err := workflows.Log(workflows.LogOptions{
		DataDir:    dataDir,
		Limit:      logLimit,
		Reverse:    logReverse,
		Operations: logOperation,
		Wallet:     logWallet,
		FailedOnly: logFailed,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		fmt.Println(formatLogError(err))
		if isLogUnexpectedError(err) {
			return reported(err)
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	switch {
	case logJSON:
		return printJSON(result.Entries)
	case logOneline:
		outputLogOneline(result.Entries)
	default:
		outputLogDefault(result.Entries)
	}
	return nil
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoAuditLog):
		return ui.Info.Sprint("ℹ") + " No audit log found. Operations are logged once jupwallet has been initialized."
	case errors.Is(err, kerrors.ErrInvalidDateFormat):
		return ui.ErrorLine("%s", err.Error())
	default:
		return ui.ErrorLine("Failed to read audit log: %s", err.Error())
	}
}

// isLogUnexpectedError returns true if the error is unexpected and should cause a non-zero exit.
func isLogUnexpectedError(err error) bool {
	return !errors.Is(err, kerrors.ErrNoAuditLog) && !errors.Is(err, kerrors.ErrInvalidDateFormat)
}

func outputLogOneline(entries []audit.Entry) {
	for _, e := range entries {
		fmt.Printf("%s %s %s%s\n", formatLogTime(e.Timestamp, "2006-01-02"), e.Operation, formatLogDetails(e), formatLogStatus(e))
	}
}

func outputLogDefault(entries []audit.Entry) {
	for _, e := range entries {
		fmt.Printf("%-19s  %-20s  %-20s  %s%s\n",
			formatLogTime(e.Timestamp, "2006-01-02 15:04:05"), e.User+"@"+e.Host, e.Operation, formatLogDetails(e), formatLogStatus(e))
	}
}

func formatLogTime(ts, layout string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(layout)
}

func formatLogDetails(e audit.Entry) string {
	var parts []string
	if e.WalletName != "" {
		parts = append(parts, e.WalletName)
	}
	if e.Address != "" {
		parts = append(parts, utils.ShortenAddress(e.Address))
	}
	if e.Source != "" {
		parts = append(parts, "via "+e.Source)
	}
	return strings.Join(parts, " ")
}

func formatLogStatus(e audit.Entry) string {
	if !e.Failed {
		return ""
	}
	status := " " + ui.Error.Sprint("failed")
	if e.Error != "" {
		status += " " + ui.Muted.Sprint(e.Error)
	}
	return status
}
