// Package ui provides semantic text formatting for CLI output.
//
// Formatters colorize content when the terminal supports it. When NO_COLOR
// is set or color is unavailable they fall back to text decorations:
//
//	ui.Code.Sprint("jupwallet init")           // `jupwallet init`
//	ui.Highlight.Sprint("trading")             // 'trading'
//	ui.Muted.Sprint("inactive")                // (inactive)
//	ui.Path.Sprint("~/.solana/jupwallet")      // unchanged
//	ui.Address.Sprint("7xKX...gAsU")           // unchanged
//
// SuccessLine, ErrorLine, WarningLine and HintLine build the "✓", "✗", "⚠"
// and "→" prefixed lines every command prints.
package ui
