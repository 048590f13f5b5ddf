package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"undoCalc/internal/domain"
	"undoCalc/internal/ports"
)

const (
	prompt    = "calc> "
	timestamp = "2006-01-02 15:04:05"
)

// Shell — интерактивная оболочка над фасадом калькулятора. Читает команды построчно из in.
type Shell struct {
	uc        ports.ICalculatorUseCase
	in        *bufio.Scanner
	out       io.Writer
	precision int
	log       *slog.Logger
}

// New создаёт оболочку. precision — знаков после запятой при выводе результатов.
func New(uc ports.ICalculatorUseCase, in io.Reader, out io.Writer, precision int, log *slog.Logger) *Shell {
	if log == nil {
		log = slog.Default()
	}
	return &Shell{
		uc:        uc,
		in:        bufio.NewScanner(in),
		out:       out,
		precision: precision,
		log:       log,
	}
}

// Run крутит цикл чтения команд до exit/quit, конца ввода или отмены ctx.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Calculator with undo/redo. Type 'help' for commands.")
	s.log.Info("repl started")
	defer s.log.Info("repl stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, prompt)
		line, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if s.handle(ctx, line) {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
	}
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) ask(question string) (string, bool) {
	fmt.Fprint(s.out, question)
	return s.readLine()
}

// handle выполняет одну строку ввода. Возвращает true, если пора выходить.
func (s *Shell) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		return true
	case "help":
		s.help()
	case "history":
		s.history(ctx)
	case "clear":
		s.uc.Clear(ctx)
		fmt.Fprintln(s.out, "History cleared.")
	case "undo":
		s.report(s.uc.Undo(ctx), "Undone.")
	case "redo":
		s.report(s.uc.Redo(ctx), "Redone.")
	case "save":
		s.report(s.uc.Save(ctx, pathArg(args)), "History saved.")
	case "load":
		s.report(s.uc.Load(ctx, pathArg(args)), "History loaded.")
	default:
		s.calculate(ctx, fields[0], args)
	}
	return false
}

// calculate принимает операцию с операндами в одной строке ("+ 1 2")
// или только операцию, и тогда спрашивает операнды по одному.
func (s *Shell) calculate(ctx context.Context, token string, args []string) {
	var a, b string
	switch len(args) {
	case 2:
		a, b = args[0], args[1]
	case 0:
		if _, err := domain.Resolve(token); err != nil {
			s.fail(err)
			return
		}
		var ok bool
		if a, ok = s.ask("Enter first number: "); !ok {
			return
		}
		if b, ok = s.ask("Enter second number: "); !ok {
			return
		}
	default:
		fmt.Fprintln(s.out, "Usage: <operation> <a> <b>, or <operation> alone to be prompted. Type 'help' for commands.")
		return
	}

	rec, err := s.uc.Evaluate(ctx, token, a, b)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Result: %s\n", domain.FormatNumber(rec.Result, s.precision))
}

func (s *Shell) history(ctx context.Context) {
	recs := s.uc.History(ctx)
	if len(recs) == 0 {
		fmt.Fprintln(s.out, "No calculations in history.")
		return
	}

	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tOPERATION\tA\tB\tRESULT\tTIME")
	for i, r := range recs {
		result := "error: " + r.Err
		if r.Succeeded() {
			result = domain.FormatNumber(r.Result, s.precision)
		}
		at := ""
		if !r.Timestamp.IsZero() {
			at = r.Timestamp.Format(timestamp)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, r.Operation,
			domain.FormatNumber(r.A, -1), domain.FormatNumber(r.B, -1), result, at)
	}
	_ = tw.Flush()
}

func (s *Shell) help() {
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Commands:")
	fmt.Fprintln(tw, "  <op> <a> <b>\tcalculate, e.g. '+ 2 3' or 'power 2 10'")
	fmt.Fprintln(tw, "  <op>\tcalculate, prompting for operands")
	fmt.Fprintln(tw, "  history\tshow calculation history")
	fmt.Fprintln(tw, "  undo / redo\tundo or redo the last history change")
	fmt.Fprintln(tw, "  clear\tclear history (cannot be undone)")
	fmt.Fprintln(tw, "  save [path]\tsave history to CSV")
	fmt.Fprintln(tw, "  load [path]\tload history from CSV")
	fmt.Fprintln(tw, "  exit / quit\tleave the calculator")
	fmt.Fprintln(tw, "Operations:")
	for _, op := range domain.Operations() {
		fmt.Fprintf(tw, "  %s\t%s\n", op.Symbol(), op.Name())
	}
	_ = tw.Flush()
}

func (s *Shell) report(err error, ok string) {
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintln(s.out, ok)
}

func (s *Shell) fail(err error) {
	s.log.Debug("command failed", "error", err)
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

// pathArg склеивает аргументы обратно, чтобы путь мог содержать пробелы.
func pathArg(args []string) string {
	return strings.Join(args, " ")
}
