// Command interdoc inspects intermediate documents and serialization
// schema files without needing the registered Go types at hand.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"intermediate-serializer/descriptor"
	"intermediate-serializer/internal/doctree"
)

func main() {
	app := &cli.App{
		Name:  "interdoc",
		Usage: "inspect intermediate documents and serialization schemas",
		Commands: []*cli.Command{
			treeCommand(),
			schemaCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "interdoc:", err)
		os.Exit(1)
	}
}

func treeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "print the element tree of a document",
		ArgsUsage: "<document>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "dump the raw parsed tree instead of the outline",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("tree: expected exactly one document path", 2)
			}

			f, err := os.Open(c.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()

			root, err := doctree.Parse(f)
			if err != nil {
				return err
			}

			if c.Bool("debug") {
				spew.Fdump(c.App.Writer, root)
				return nil
			}

			printOutline(c.App.Writer, root, 0)

			return nil
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "work with serialization schema files",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "validate a schema file structurally",
				ArgsUsage: "<schema>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("schema check: expected exactly one schema path", 2)
					}

					path := c.Args().First()

					sf, err := descriptor.LoadSchemaFile(path)
					if err != nil {
						return err
					}

					diags := sf.Validate()

					for _, d := range diags.Warnings {
						fmt.Fprintf(c.App.Writer, "%s: warning: %s\n", path, d.String())
					}

					for _, d := range diags.Errors {
						fmt.Fprintf(c.App.Writer, "%s: error: %s\n", path, d.String())
					}

					if diags.HasErrors() {
						return cli.Exit(fmt.Sprintf("%s: %d problem(s)", path, len(diags.Errors)), 1)
					}

					fmt.Fprintf(c.App.Writer, "%s: ok, %d type(s)\n", path, len(sf.Types))

					return nil
				},
			},
		},
	}
}

// printOutline renders one line per element: name, attributes in stable
// order, and leaf text when present.
func printOutline(w io.Writer, el *doctree.Element, depth int) {
	var b strings.Builder

	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}

	b.WriteString(el.Name)

	names := make([]string, 0, len(el.Attrs))
	for name := range el.Attrs {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&b, " %s=%q", name, el.Attrs[name])
	}

	if len(el.Children) == 0 {
		if text := strings.TrimSpace(el.Text); text != "" {
			b.WriteString(" = ")
			b.WriteString(text)
		}
	}

	fmt.Fprintln(w, b.String())

	for _, ch := range el.Children {
		printOutline(w, ch, depth+1)
	}
}
