package commands

import (
	"fmt"
)

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintProgress prints a batch progress step
// Example: [Screen] Classified batch 3/12 (25.0%)
func PrintProgress(tag string, batch, total int, percent float64) {
	fmt.Printf("[%s] Classified batch %d/%d (%.1f%%)\n", tag, batch, total, percent)
}

// PrintTableHeader prints a fixed-width table header with a separator line
func PrintTableHeader(columns []string, widths []int) {
	total := 0
	for i, col := range columns {
		fmt.Printf("%-*s", widths[i], col)
		total += widths[i]
		if i < len(columns)-1 {
			fmt.Print("  ")
			total += 2
		}
	}
	fmt.Println()
	for i := 0; i < total; i++ {
		fmt.Print("─")
	}
	fmt.Println()
}
