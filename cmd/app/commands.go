package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/lectern/internal"
	"github.com/starford/lectern/internal/libraryservice"
)

type appAction func(ctx context.Context, cmd *cli.Command, app *internal.App) error

// withApp loads the config and wires the library before running fn. Logs go
// to stderr so command output stays clean.
func withApp(fn appAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		app, err := internal.NewApp(internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(ctx, cmd, app)
	}
}

func requireArg(cmd *cli.Command, i int, name string) (string, error) {
	v := cmd.Args().Get(i)
	if v == "" {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return v, nil
}

func sourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "Manage library source folders",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List registered sources",
				Action: withApp(func(_ context.Context, _ *cli.Command, app *internal.App) error {
					renderSources(os.Stdout, app.Service.Sources())
					return nil
				}),
			},
			{
				Name:      "add",
				Usage:     "Register a folder",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (defaults to the folder name)"},
				},
				Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
					path, err := requireArg(cmd, 0, "path")
					if err != nil {
						return err
					}
					sources, err := app.Service.AddSource(cmd.String("name"), path)
					if err != nil {
						return err
					}
					renderSources(os.Stdout, sources)
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "Unregister a folder",
				ArgsUsage: "<path>",
				Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
					path, err := requireArg(cmd, 0, "path")
					if err != nil {
						return err
					}
					sources, err := app.Service.RemoveSource(path)
					if err != nil {
						return err
					}
					renderSources(os.Stdout, sources)
					return nil
				}),
			},
		},
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Show the books under a folder inside a library source",
		ArgsUsage: "<dir>",
		Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
			dir, err := requireArg(cmd, 0, "dir")
			if err != nil {
				return err
			}
			items, err := app.Service.ListBooks(dir)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stdout, renderTree(dir, items))
			return nil
		}),
	}
}

func openCommand() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Print the text of a book",
		ArgsUsage: "<path>",
		Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
			path, err := requireArg(cmd, 0, "path")
			if err != nil {
				return err
			}
			book, err := app.Service.OpenBook(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "# %s\n\n%s\n", book.Title, book.Content)
			return nil
		}),
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write a portable manifest of every source",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Destination file (prompted when omitted)"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			var picker libraryservice.Picker = libraryservice.StaticPicker{Save: cmd.String("out")}
			if cmd.String("out") == "" {
				picker = newPromptPicker(os.Stdin, os.Stderr)
			}
			res, err := app.Service.ExportManifest(ctx, picker)
			if err != nil {
				return err
			}
			renderExport(os.Stdout, res)
			return nil
		}),
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Register the sources of a manifest found under a shared root",
		ArgsUsage: "[manifest] [shared-root]",
		Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			var picker libraryservice.Picker = libraryservice.StaticPicker{
				File:   cmd.Args().Get(0),
				Folder: cmd.Args().Get(1),
			}
			if cmd.Args().Len() < 2 {
				picker = newPromptPicker(os.Stdin, os.Stderr).withPreset(cmd.Args().Get(0), "")
			}
			res, err := app.Service.ImportManifest(ctx, picker)
			if err != nil {
				return err
			}
			renderImport(os.Stdout, res)
			return nil
		}),
	}
}

func corpusCommand() *cli.Command {
	return &cli.Command{
		Name:  "corpus",
		Usage: "Inspect the reading-comprehension corpus",
		Commands: []*cli.Command{
			{
				Name:  "info",
				Usage: "Show availability per family and tier",
				Action: withApp(func(_ context.Context, _ *cli.Command, app *internal.App) error {
					renderCorpusInfo(os.Stdout, app.Service.CorpusInfo())
					return nil
				}),
			},
			{
				Name:      "sample",
				Usage:     "Print one article",
				ArgsUsage: "<family> <tier>",
				Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
					article := app.Service.SampleArticle(cmd.Args().Get(0), cmd.Args().Get(1))
					if article == nil {
						return errors.New("no article available")
					}
					fmt.Fprintf(os.Stdout, "%s (%s, grade %.1f)\n\n%s\n", article.Title, article.Domain, article.FKGrade, article.Text)
					return nil
				}),
			},
		},
	}
}

func secretCommand() *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "Manage API keys in the OS credential store",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Report whether the credential store is usable",
				Action: withApp(func(_ context.Context, _ *cli.Command, app *internal.App) error {
					if app.Service.SecretsAvailable() {
						fmt.Fprintln(os.Stdout, "available")
					} else {
						fmt.Fprintln(os.Stdout, "unavailable")
					}
					return nil
				}),
			},
			{
				Name:      "get",
				Usage:     "Report whether a key is stored",
				ArgsUsage: "<key-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "reveal", Usage: "Print the stored value"},
				},
				Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
					value, err := app.Service.GetSecret(cmd.Args().Get(0))
					if err != nil {
						return err
					}
					switch {
					case value == nil:
						fmt.Fprintln(os.Stdout, "not set")
					case cmd.Bool("reveal"):
						fmt.Fprintln(os.Stdout, *value)
					default:
						fmt.Fprintln(os.Stdout, "set")
					}
					return nil
				}),
			},
			{
				Name:      "set",
				Usage:     "Store a key read from the terminal or stdin; an empty value deletes it",
				ArgsUsage: "<key-id>",
				Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
					value, err := readSecret(os.Stdin, os.Stderr)
					if err != nil {
						return err
					}
					return app.Service.SetSecret(cmd.Args().Get(0), &value)
				}),
			},
		},
	}
}

func quizCommand() *cli.Command {
	return &cli.Command{
		Name:      "quiz",
		Usage:     "Sample an article and generate comprehension questions",
		ArgsUsage: "<family> <tier>",
		Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			article, questions, err := app.Service.Quiz(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}
			if article == nil {
				return errors.New("no article available")
			}
			fmt.Fprintf(os.Stdout, "%s\n\n%s\n\n", article.Title, article.Text)
			for i, q := range questions {
				fmt.Fprintf(os.Stdout, "%d. %s\n", i+1, q.Question)
				for j, opt := range q.Options {
					fmt.Fprintf(os.Stdout, "   %c) %s\n", 'a'+j, opt)
				}
			}
			return nil
		}),
	}
}
