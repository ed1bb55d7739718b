package util

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// TempSuffix marks in-flight snapshot files written next to their target.
const TempSuffix = ".tmp"

// TempPattern is the os.CreateTemp pattern for an in-flight copy of the file
// named base.
func TempPattern(base string) string {
	return "." + base + "-*" + TempSuffix
}

// SetupInterruptHandler removes half-written copies of outputPath and exits
// with status 1 on SIGINT/SIGTERM.
func SetupInterruptHandler(outputPath string) {
	outputDir := filepath.Dir(outputPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Cleaning up...")

		CleanupUnfinishedSnapshots(outputPath)
		RemoveIfEmpty(outputDir)
		fmt.Println("\nExiting due to interrupt.")

		os.Exit(1)
	}()
}

// CleanupUnfinishedSnapshots removes temp files left next to outputPath by
// an interrupted write. Other files in the directory are left alone.
func CleanupUnfinishedSnapshots(outputPath string) {
	outputDir := filepath.Dir(outputPath)
	prefix := "." + filepath.Base(outputPath) + "-"

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return
	}

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, TempSuffix) {
			full := filepath.Join(outputDir, name)

			if err := os.Remove(full); err != nil {
				fmt.Printf("Error cleaning up %s: %v\n", full, err)
			} else {
				fmt.Printf("Removed %s\n", full)
			}
		}
	}
}

func RemoveIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			fmt.Printf("Removed empty output folder: %s\n", dir)
		}
	}
}
