// Command jumble-worker is the standalone worker process for component G.
// It reads a worker.Descriptor as the first line of its stdin, then one
// "MUTATE <index>" line per mutant to test, and answers each with one
// line-protocol verdict line and "DONE" once stdin closes. The jumble
// command does not launch it: jumble runs every mutant in-process through
// worker.Batch. Running the mutate+run loop in its own process keeps a JVM
// crash or a wedged test away from whatever process drives it.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pragmatics/jumble/internal/classfile"
	m "github.com/pragmatics/jumble/internal/model"
	"github.com/pragmatics/jumble/internal/mutate"
	"github.com/pragmatics/jumble/internal/testrunner"
	"github.com/pragmatics/jumble/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("jumble-worker: fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	stdin := bufio.NewReader(os.Stdin)

	descLine, err := stdin.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading descriptor line: %w", err)
	}

	var desc worker.Descriptor
	if err := json.Unmarshal([]byte(strings.TrimSpace(descLine)), &desc); err != nil {
		return fmt.Errorf("decoding descriptor: %w", err)
	}

	classBytes, err := os.ReadFile(desc.ClassPath)
	if err != nil {
		return fmt.Errorf("reading class file %s: %w", desc.ClassPath, err)
	}

	cf, err := classfile.Parse(bytes.NewReader(classBytes))
	if err != nil {
		return fmt.Errorf("parsing class file: %w", err)
	}

	testOrder, err := desc.ToTestOrder()
	if err != nil {
		return fmt.Errorf("rebuilding test order: %w", err)
	}

	batch := &worker.Batch{
		ClassFile:       cf,
		ClassBinaryName: desc.ClassBinaryName,
		Mutater:         mutate.New(),
		MutateOptions:   mutate.Options{EnabledKinds: desc.EnabledKinds, ExcludedMethods: desc.ExcludedMethods},
		Runner:          testrunner.New(desc.WorkDir),
		Classpath:       desc.Classpath,
		ExtraDeferred:   desc.ExtraDeferred,
		WorkDir:         desc.WorkDir,
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	ctx := context.Background()

	for {
		line, readErr := stdin.ReadString('\n')
		line = strings.TrimSpace(line)

		if line != "" {
			if err := handleLine(ctx, batch, testOrder, time.Duration(desc.BudgetMillis)*time.Millisecond, line, out); err != nil {
				slog.Warn("jumble-worker: line handling error", "line", line, "error", err)
			}

			out.Flush()
		}

		if readErr != nil {
			break
		}
	}

	fmt.Fprintln(out, "DONE")

	return nil
}

func handleLine(ctx context.Context, batch *worker.Batch, order *m.TestOrder, budget time.Duration, line string, out *bufio.Writer) error {
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != "MUTATE" {
		return fmt.Errorf("malformed command %q", line)
	}

	index, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("malformed index in %q: %w", line, err)
	}

	_, verdict, err := batch.Dispatch(ctx, index, order, budget)
	if err != nil {
		fmt.Fprintf(out, "ERR %d %s\n", index, err)
		return nil
	}

	fmt.Fprintln(out, worker.FormatVerdict(index, verdict))

	return nil
}
