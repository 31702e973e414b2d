package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

// menuCommand runs the numbered menu that a bare 'gitkeys' opens on a
// terminal. Each option maps to one command; errors print and drop back to
// the prompt so a failed operation never ends the session.
func menuCommand() error {
	fmt.Println("gitkeys - SSH keys for Git platforms")
	fmt.Println("Pick an option by number. 'q' quits, '?' reprints the menu.")
	printMenu()

	homeDir, _ := os.UserHomeDir()
	historyFile := filepath.Join(homeDir, ".gitkeys_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gitkeys> ",
		HistoryFile:     historyFile,
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Falling back to basic input (no history): %v\n", err)
		return menuLoopBasic()
	}
	defer func() {
		_ = rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				fmt.Println("Use 'q' or option 9 to quit")
			}
			continue
		}
		if err == io.EOF {
			fmt.Println("Bye.")
			return nil
		}
		if err != nil {
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		if dispatchMenu(strings.TrimSpace(line)) {
			return nil
		}
	}
}

// menuLoopBasic is the fallback loop for terminals readline cannot drive.
func menuLoopBasic() error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("gitkeys> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		if dispatchMenu(strings.TrimSpace(scanner.Text())) {
			return nil
		}
	}
}

// dispatchMenu runs one menu selection. Returns true when the session
// should end.
func dispatchMenu(choice string) bool {
	switch choice {
	case "":
		return false
	case "1":
		runMenuAction(createCommand)
	case "2":
		runMenuAction(listCommand)
	case "3":
		runMenuAction(func() error { return testCommand("") })
	case "4":
		runMenuAction(func() error { return removeCommand("") })
	case "5":
		runMenuAction(func() error { return agentAddCommand("") })
	case "6":
		runMenuAction(backupCommand)
	case "7":
		runMenuAction(reportCommand)
	case "8":
		runMenuAction(exportCommand)
	case "9", "q", "quit", "exit":
		fmt.Println("Bye.")
		return true
	case "?", "h", "help":
		printMenu()
	default:
		fmt.Printf("Unknown option '%s'. Type a number from 1 to 9, or '?' for the menu.\n", choice)
	}
	return false
}

// runMenuAction executes one command, printing failures instead of
// propagating them; only input errors end the menu loop.
func runMenuAction(action func() error) {
	fmt.Println()
	if err := action(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	fmt.Println()
}

func printMenu() {
	bold := ui.BoldStyle()
	fmt.Println()
	fmt.Println(bold.Render("  1.") + " Create a key")
	fmt.Println(bold.Render("  2.") + " List keys")
	fmt.Println(bold.Render("  3.") + " Test connections")
	fmt.Println(bold.Render("  4.") + " Remove a key")
	fmt.Println(bold.Render("  5.") + " Load a key into the agent")
	fmt.Println(bold.Render("  6.") + " Back up the key store")
	fmt.Println(bold.Render("  7.") + " Write a report")
	fmt.Println(bold.Render("  8.") + " Export public keys")
	fmt.Println(bold.Render("  9.") + " Quit")
	fmt.Println()
}
