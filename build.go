//go:build ignore

// build.go - Client Report Generator build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, server, cli, clean, test

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const contractsPkg = "clientreport/pkg/contracts"

var (
	distDir = "dist"

	// key = directory under cmd/, value = output binary name
	executables = map[string]string{
		"report-server": "report-server",
		"report-cli":    "report-cli",
	}

	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	var err error
	switch *target {
	case "all":
		err = buildAll(*verbose)
	case "server":
		err = buildExecutable("report-server", *verbose)
	case "cli":
		err = buildExecutable("report-cli", *verbose)
	case "clean":
		err = clean()
	case "test":
		err = runTests(*verbose)
	default:
		showHelp()
		os.Exit(1)
	}
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "   Client Report Generator - Build System  " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func buildAll(verbose bool) error {
	printInfo("Building all components...")
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", distDir, err)
	}
	for name := range executables {
		if err := buildExecutable(name, verbose); err != nil {
			return err
		}
	}
	return nil
}

func buildExecutable(name string, verbose bool) error {
	binName, ok := executables[name]
	if !ok {
		return fmt.Errorf("unknown executable: %s", name)
	}
	printInfo(fmt.Sprintf("Building %s...", name))

	ldflags := fmt.Sprintf("-s -w -X %s.BuildTime=%s -X %s.GitCommit=%s",
		contractsPkg, time.Now().UTC().Format(time.RFC3339),
		contractsPkg, gitCommit())

	outputPath := filepath.Join(distDir, binName)
	args := []string{"build", "-ldflags", ldflags, "-o", outputPath, "./cmd/" + name}
	if verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
	}

	if err := goCommand(verbose, args...); err != nil {
		return fmt.Errorf("failed to build %s: %w", name, err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", binName, sizeMB))
	}
	return nil
}

func clean() error {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		return fmt.Errorf("failed to clean %s: %w", distDir, err)
	}
	printSuccess("Build artifacts cleaned")
	return nil
}

func runTests(verbose bool) error {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")
	if err := goCommand(true, args...); err != nil {
		return fmt.Errorf("go tests failed: %w", err)
	}
	printSuccess("All tests passed")
	return nil
}

func goCommand(attach bool, args ...string) error {
	cmd := exec.Command("go", args...)
	if attach {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all      Build report-server and report-cli into dist/ (default)")
	fmt.Println("  server   Build report-server only")
	fmt.Println("  cli      Build report-cli only")
	fmt.Println("  clean    Remove dist/")
	fmt.Println("  test     Run all tests with the race detector")
}
