package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/loader"
	"github.com/robinvdvleuten/compta/telemetry"
)

type ImportCmd struct {
	Files []string `help:"Scenario files to apply, in order." arg:"" type:"existingfile"`
}

// Run applies every scenario to the configured ledger. Scenario options are
// ignored here: the configuration decides the derivation rules.
func (cmd *ImportCmd) Run(ctx *kong.Context, globals *Globals) error {
	a, err := globals.open(ctx, "import")
	if err != nil {
		return err
	}
	defer a.close(ctx)

	ldr := loader.New(loader.WithFollowIncludes())

	failed := 0
	for _, file := range cmd.Files {
		result, err := ldr.Load(a.ctx, file)
		if err != nil {
			renderLoadError(ctx, err)
			failed++
			continue
		}
		if len(result.Scenario.Options) > 0 {
			a.logger.Debug("ignoring scenario options on import", "file", file)
		}

		summary, err := loader.Apply(a.ctx, a.ledger, result.Scenario)
		if summary != nil {
			printInfof(ctx.Stdout, "%s: %d entries registered", pathStyle.Render(file), len(summary.Entries))
		}
		if err != nil {
			if !renderValidationErrors(ctx, err) {
				return err
			}
			failed++
		}
	}

	if failed > 0 {
		printError(ctx.Stderr, fmt.Sprintf("%d of %d file(s) had errors", failed, len(cmd.Files)))
		return NewCommandError(1)
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("Imported %d file(s)", len(cmd.Files)))
	return nil
}

type CheckCmd struct {
	File FileOrStdin `help:"Scenario file (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	JSON bool        `help:"Print the derived statements as JSON."`
}

// Run applies the scenario to an empty in-memory ledger built with the
// scenario's own options and checks that the balance sheet balances.
func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()
	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		timer := collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
		defer func() {
			timer.End()
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr)
		}()
	}

	sc, err := cmd.File.LoadScenario(runCtx, loader.New(loader.WithFollowIncludes()))
	if err != nil {
		renderLoadError(ctx, err)
		return NewCommandError(1)
	}

	config, err := sc.LedgerConfig()
	if err != nil {
		return err
	}

	l := ledger.New(ledger.NewMemoryStore(), ledger.WithConfig(config))
	defer func() { _ = l.Close() }()

	if _, err := loader.Apply(runCtx, l, sc); err != nil {
		if renderValidationErrors(ctx, err) {
			return NewCommandError(1)
		}
		return err
	}

	st, err := l.Statements(runCtx)
	if err != nil {
		return err
	}

	if cmd.JSON {
		if err := writeJSON(ctx.Stdout, st); err != nil {
			return err
		}
	}

	if !st.BalanceSheet.Balanced() {
		printError(ctx.Stderr, fmt.Sprintf("Not balanced: assets and liabilities differ by %s", st.BalanceSheet.Imbalance().StringFixed(2)))
		return NewCommandError(1)
	}

	if !cmd.JSON {
		printSuccess(ctx.Stdout, fmt.Sprintf("Check passed: net result %s, total assets %s",
			st.IncomeStatement.NetResult.StringFixed(2), st.BalanceSheet.TotalAssets.StringFixed(2)))
	}
	return nil
}

func renderLoadError(ctx *kong.Context, err error) {
	var source []byte
	var parseErr *loader.ParseError
	if errors.As(err, &parseErr) {
		source = parseErr.Source
		err = parseErr
	} else if errors.Is(err, os.ErrNotExist) {
		printError(ctx.Stderr, err.Error())
		return
	}
	_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(source).Render(err))
	_, _ = fmt.Fprintln(ctx.Stderr)
	printError(ctx.Stderr, "parse error")
}

// renderValidationErrors prints step failures and reports whether err was one.
func renderValidationErrors(ctx *kong.Context, err error) bool {
	var validationErrors *ledger.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false
	}
	_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(nil).RenderAll(validationErrors.Errors))
	_, _ = fmt.Fprintln(ctx.Stderr)
	printError(ctx.Stderr, fmt.Sprintf("%d validation error(s) found", len(validationErrors.Errors)))
	return true
}
