package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// lineFilter 回傳 false 的行不印出
type lineFilter func(line string) bool

// runTest: go clean -testcache && go test ./... -cover -count=1 | grep -E '^(ok|FAIL)'
func runTest() error {
	PrintGreen("running tests")
	cleanCache(false)
	return streamGo("tests", func(line string) bool {
		return strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") ||
			strings.Contains(line, "build failed") || strings.Contains(line, "setup failed")
	}, "test", "./...", "-cover", "-count=1")
}

// runTestAll: go clean -testcache && go test -cover ./...
func runTestAll() error {
	PrintGreen("running tests (all with coverage)")
	if err := cleanCache(true); err != nil {
		return err
	}
	return streamGo("tests (with coverage)", nil, "test", "./...", "-cover")
}

// runTestDetail: go test ./... -v -count=1 | grep -v '[no test files]'
func runTestDetail() error {
	PrintGreen("running tests (detail)")
	if err := cleanCache(true); err != nil {
		return err
	}
	return streamGo("tests (detail)", func(line string) bool {
		return !strings.Contains(line, "[no test files]")
	}, "test", "./...", "-v", "-count=1")
}

func cleanCache(strict bool) error {
	cmd := exec.Command("go", "clean", "-testcache")
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		if strict {
			return fmt.Errorf("go clean -testcache failed: %w", err)
		}
		PrintRed(err.Error())
	}
	return nil
}

// streamGo 執行 go 指令並把 stdout/stderr 合併逐行上色（2>&1）
func streamGo(name string, keep lineFilter, args ...string) error {
	cmd := exec.Command("go", args...)
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting go %s: %w", args[0], err)
	}
	if err := colorLines(pipe, keep); err != nil {
		PrintRed(fmt.Sprintf("scanner error: %v", err))
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("\n%s finished with errors", strings.ToUpper(name[:1])+name[1:])
	}
	return nil
}

func colorLines(r io.Reader, keep lineFilter) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if keep != nil && !keep(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"):
			PrintRed(line)
		default:
			PrintDefault(line)
		}
	}
	return sc.Err()
}
