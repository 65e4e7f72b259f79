// Package logger provides structured logging for jupwallet commands and
// services.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags or the [logging] table of config.toml. Output is formatted with
// semantic prefixes and colors.
//
// # Verbosity Levels
//
//   - --verbose: Shows info messages
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always shown on stderr.
//
// # Log Methods
//
//	Logger.Infof()           // Shown with --verbose or --debug
//	Logger.Debugf()          // Shown only with --debug
//	Logger.Warnf()           // Always shown
//	Logger.Errorf()          // Always shown
//	Logger.ErrorfAndReturn() // Always shown, returns the message as an error
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Loaded %d wallets", count)
//
// Services receive a Logger by value at construction time. Key material,
// passwords and session keys must never be passed to any log method.
package logger
