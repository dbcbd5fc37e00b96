package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stockscan/internal/scan"
	"stockscan/internal/services"
	"stockscan/internal/session"
	"stockscan/internal/warehouse"
)

const scanLongHelp = `Run a scanning session. Every input line is a tag value unless it starts
with a colon:

  :in | :out              set the movement direction
  :project <id>           set the project id
  :qty <n>                set the quantity (invalid values become 1)
  :mode explode|book_all  answer the bundle mode prompt
  :submit                 submit the current scan
  :sync                   flush the offline queue now
  :status                 print the form and pending count`

func newScanCommand(ctx *commandContext) *cobra.Command {
	var project string
	var direction string
	var quantity string
	var inputPath string
	var autoSubmit bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run an interactive scanning session",
		Long:  scanLongHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := warehouse.Direction(strings.ToLower(strings.TrimSpace(direction)))
			if !dir.Valid() {
				return fmt.Errorf("invalid --direction %q (use in or out)", direction)
			}
			in := cmd.InOrStdin()
			decoder := scan.NewLineDecoder(func() (io.ReadCloser, error) {
				if path := strings.TrimSpace(inputPath); path != "" {
					return os.Open(path)
				}
				return io.NopCloser(in), nil
			})
			interactive := strings.TrimSpace(inputPath) == "" && isTerminal(in)

			return ctx.withSession(cmd, func(sess *session.Session) error {
				ctrl, err := sess.NewController(scan.Options{
					Direction:    dir,
					ProjectInput: project,
					Quantity:     scan.CoerceQuantity(quantity),
				})
				if err != nil {
					return err
				}
				defer ctrl.Close()

				runner := &scanRunner{
					sess:        sess,
					ctrl:        ctrl,
					out:         cmd.OutOrStdout(),
					colorize:    shouldColorize(cmd.OutOrStdout()),
					interactive: interactive,
					autoSubmit:  autoSubmit,
				}
				return runner.run(cmd.Context(), decoder)
			})
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project id to book movements against")
	cmd.Flags().StringVarP(&direction, "direction", "d", string(warehouse.DirectionOut), "Movement direction (in or out)")
	cmd.Flags().StringVarP(&quantity, "qty", "q", "1", "Quantity per movement")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Read tag values from a file instead of stdin")
	cmd.Flags().BoolVar(&autoSubmit, "auto-submit", false, "Submit every scan as soon as it is ready")
	return cmd
}

type scanRunner struct {
	sess        *session.Session
	ctrl        *scan.Controller
	out         io.Writer
	colorize    bool
	interactive bool
	autoSubmit  bool
}

func (r *scanRunner) run(ctx context.Context, decoder scan.Decoder) error {
	view := r.ctrl.Snapshot()
	fmt.Fprintf(r.out, "Session %s: %s, %s\n", r.sess.ID(), r.sess.Monitor().State(), formLine(view))
	r.prompt()
	err := scan.RunFeed(ctx, decoder, func(ctx context.Context, line string) error {
		err := r.handle(ctx, line)
		r.prompt()
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *scanRunner) prompt() {
	if r.interactive {
		fmt.Fprint(r.out, "> ")
	}
}

func (r *scanRunner) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	var err error
	if strings.HasPrefix(line, ":") {
		err = r.control(ctx, line)
	} else {
		err = r.scan(ctx, line)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrValidation), errors.Is(err, scan.ErrBusy):
		fmt.Fprintf(r.out, "error: %v\n", err)
		return nil
	default:
		return err
	}
}

func (r *scanRunner) scan(ctx context.Context, tag string) error {
	if err := r.ctrl.Scan(ctx, tag); err != nil {
		return err
	}
	view := r.ctrl.Snapshot()
	r.print(view)
	if r.autoSubmit && view.SubmitEnabled {
		return r.submit(ctx)
	}
	return nil
}

func (r *scanRunner) submit(ctx context.Context) error {
	err := r.ctrl.Submit(ctx)
	r.print(r.ctrl.Snapshot())
	if errors.Is(err, scan.ErrNotReady) {
		return nil
	}
	return err
}

func (r *scanRunner) control(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "in":
		return r.setDirection(warehouse.DirectionIn)
	case "out":
		return r.setDirection(warehouse.DirectionOut)
	case "project":
		r.ctrl.SetProjectInput(arg)
		fmt.Fprintln(r.out, formLine(r.ctrl.Snapshot()))
		return nil
	case "qty":
		r.ctrl.SetQuantityInput(arg)
		fmt.Fprintln(r.out, formLine(r.ctrl.Snapshot()))
		return nil
	case "mode":
		if err := r.ctrl.ChooseBundleMode(warehouse.BundleMode(strings.ToLower(arg))); err != nil {
			return err
		}
		r.print(r.ctrl.Snapshot())
		if r.autoSubmit {
			return r.submit(ctx)
		}
		return nil
	case "submit":
		return r.submit(ctx)
	case "sync":
		return r.sync(ctx)
	case "status":
		view := r.ctrl.Snapshot()
		fmt.Fprintln(r.out, formLine(view))
		r.print(view)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", services.ErrValidation, line)
	}
}

func (r *scanRunner) setDirection(direction warehouse.Direction) error {
	if err := r.ctrl.SetDirection(direction); err != nil {
		return err
	}
	fmt.Fprintln(r.out, formLine(r.ctrl.Snapshot()))
	return nil
}

func (r *scanRunner) sync(ctx context.Context) error {
	result, err := r.sess.SyncNow(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, flushSummary(result))
	for _, notice := range result.Dropped {
		fmt.Fprintf(r.out, "dropped %s: %s\n", notice.Tag, notice.Reason)
	}
	if err := r.ctrl.RefreshPending(ctx); err != nil {
		return err
	}
	return nil
}

func (r *scanRunner) print(view scan.View) {
	fmt.Fprintln(r.out, renderStatus(view, r.colorize))
}
