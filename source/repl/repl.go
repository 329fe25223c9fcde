package repl

// The interactive inspector: a line-reader loop over a certified environment.
// Entering a declaration name prints its signature, and its value if it is a
// definition. It only ever runs after a successful check, so everything it
// shows is certified.

import (
	"fmt"
	"io"
	"strings"

	"github.com/lmorg/readline"

	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/pretty"
	"github.com/quern-dev/quern/source/text"
)

func Start(e *env.Env, out io.Writer) {
	rline := readline.NewInstance()
	rline.SetPrompt(text.PROMPT)
	pr := pretty.New(e)
	fmt.Fprintf(out, "%d declaration(s) certified. Enter a name to inspect it, 'ls' to list, 'quit' to leave.\n", e.Len())
	for {
		line, err := rline.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit":
			return
		case "ls":
			for _, n := range e.Order() {
				fmt.Fprintln(out, text.BULLET+n.String())
			}
			continue
		}
		nm := name.FromString(line)
		d, ok := e.Lookup(nm)
		if !ok {
			fmt.Fprintln(out, text.BROKEN+"no declaration named "+text.Emph(line))
			continue
		}
		fmt.Fprintln(out, text.GOOD_BULLET+pr.Declaration(d))
	}
}
