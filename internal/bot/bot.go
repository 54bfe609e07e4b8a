// Package bot is the command loop in front of the address book. It parses a
// line into a verb and arguments, runs the matching handler, and turns
// results and error kinds into translated replies.
package bot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/mattn/go-isatty"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/contacts"
	"github.com/tartampluch/go-addressbook/internal/engine"
)

var (
	errNotEnoughArgs     = errors.New(config.ErrNotEnoughArgs)
	errUnknownCommand    = errors.New(config.ErrUnknownCommand)
	errImportUnavailable = errors.New(config.ErrImportDisabled)
)

// importError marks failures of the import verbs so their cause can be shown.
type importError struct {
	err error
}

func (e *importError) Error() string { return "import: " + e.err.Error() }

func (e *importError) Unwrap() error { return e.err }

type handlerFunc func(ctx context.Context, args []string) (string, error)

type command struct {
	run     handlerFunc
	minArgs int
	mutates bool
}

// Bot dispatches commands against one Book. It is not safe for concurrent use.
type Bot struct {
	Book  *contacts.Book
	Clock contacts.Clock
	T     *Translator

	// Importer enables the import verbs. Nil disables them.
	Importer *engine.Importer

	// CardDAVURL and CardDAVUser are the defaults for import-url.
	CardDAVURL  string
	CardDAVUser string

	// OnChange runs after every command that may have modified the book.
	OnChange func(*contacts.Book)

	commands map[string]command
}

// New wires a bot around book.
func New(book *contacts.Book, t *Translator) *Bot {
	b := &Bot{Book: book, Clock: contacts.RealClock{}, T: t}
	b.commands = map[string]command{
		config.CmdHello:        {run: b.hello},
		config.CmdHelp:         {run: b.help},
		config.CmdAdd:          {run: b.addContact, minArgs: 2, mutates: true},
		config.CmdChange:       {run: b.changePhone, minArgs: 3, mutates: true},
		config.CmdPhone:        {run: b.showPhones, minArgs: 1},
		config.CmdRemovePhone:  {run: b.removePhone, minArgs: 2, mutates: true},
		config.CmdShow:         {run: b.showContact, minArgs: 1},
		config.CmdAll:          {run: b.showAll},
		config.CmdDelete:       {run: b.deleteContact, minArgs: 1, mutates: true},
		config.CmdAddBirthday:  {run: b.addBirthday, minArgs: 2, mutates: true},
		config.CmdShowBirthday: {run: b.showBirthday, minArgs: 1},
		config.CmdBirthdays:    {run: b.birthdays},
		config.CmdVCard:        {run: b.vcard, minArgs: 1},
		config.CmdImport:       {run: b.importFile, minArgs: 1, mutates: true},
		config.CmdImportURL:    {run: b.importURL, mutates: true},
	}
	return b
}

// ParseInput splits a line on whitespace. Double quotes group words into
// one argument, so `show "Ann Marie"` looks up "Ann Marie". The verb is
// lower-cased; arguments are kept as typed.
func ParseInput(line string) (string, []string) {
	parts := splitArgs(line)
	if len(parts) == 0 {
		return "", nil
	}
	return strings.ToLower(parts[0]), parts[1:]
}

// splitArgs is strings.Fields with double-quote grouping. An unterminated
// quote runs to the end of the line. Single quotes are literal so names
// like O'Brien need no escaping.
func splitArgs(line string) []string {
	var (
		out     []string
		cur     strings.Builder
		inToken bool
		quoted  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inToken = true
		case !quoted && unicode.IsSpace(r):
			if inToken {
				out = append(out, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		out = append(out, cur.String())
	}
	return out
}

// Handle runs one input line and returns the reply. quit is true for exit and close.
func (b *Bot) Handle(ctx context.Context, line string) (reply string, quit bool) {
	verb, args := ParseInput(line)
	switch verb {
	case "":
		return "", false
	case config.CmdExit, config.CmdClose:
		return b.T.Msg(config.TKeyGoodbye, nil), true
	}

	log := slog.With(
		config.LogKeyComponent, config.CompBot,
		config.LogKeyVerb, verb,
		config.LogKeyArgs, len(args),
	)

	cmd, ok := b.commands[verb]
	if !ok {
		return b.describeError(errUnknownCommand), false
	}
	if len(args) < cmd.minArgs {
		return b.describeError(errNotEnoughArgs), false
	}

	reply, err := cmd.run(ctx, args)
	if cmd.mutates && b.OnChange != nil {
		b.OnChange(b.Book)
	}
	if err != nil {
		log.InfoContext(ctx, config.MsgCommandFailed, config.LogKeyError, err)
		return b.describeError(err), false
	}
	log.DebugContext(ctx, config.MsgCommand)
	return reply, false
}

// Run reads commands from in until exit, EOF or ctx cancellation. The
// prompt is only printed when in is a terminal.
func (b *Bot) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	interactive := isTerminal(in)

	lines := make(chan string)
	readErr := make(chan error, config.ChannelBufferSize)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
		readErr <- sc.Err()
	}()

	_, _ = fmt.Fprintln(out, b.T.Msg(config.TKeyWelcome, nil))
	for {
		if interactive {
			_, _ = fmt.Fprint(out, config.Prompt)
		}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("%s: %w", config.ErrInputRead, err)
					}
				default:
				}
				return nil
			}
			line = l
		}

		reply, quit := b.Handle(ctx, line)
		if reply != "" {
			_, _ = fmt.Fprintln(out, reply)
		}
		if quit {
			return nil
		}
	}
}

// describeError maps an error kind to its user-facing message.
func (b *Bot) describeError(err error) string {
	switch {
	case errors.Is(err, contacts.ErrInvalidPhoneFormat):
		return b.T.Msg(config.TKeyErrPhoneFormat, nil)
	case errors.Is(err, contacts.ErrInvalidDateFormat):
		return b.T.Msg(config.TKeyErrDateFormat, nil)
	case errors.Is(err, contacts.ErrPhoneNotFound):
		return b.T.Msg(config.TKeyErrPhoneMissing, nil)
	case errors.Is(err, contacts.ErrRecordNotFound):
		return b.T.Msg(config.TKeyErrContact, nil)
	case errors.Is(err, errNotEnoughArgs):
		return b.T.Msg(config.TKeyErrArgs, nil)
	case errors.Is(err, errUnknownCommand):
		return b.T.Msg(config.TKeyErrUnknownCmd, nil)
	case errors.Is(err, errImportUnavailable):
		return b.T.Msg(config.TKeyErrImportOff, nil)
	}

	var ie *importError
	if errors.As(err, &ie) {
		return b.T.Msg(config.TKeyErrImport, map[string]any{"Reason": ie.err.Error()})
	}
	return b.T.Msg(config.TKeyErrInternal, map[string]any{"Reason": err.Error()})
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
