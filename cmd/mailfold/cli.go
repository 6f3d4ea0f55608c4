package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v2"

	"github.com/askeland/mailfold/internal/config"
	"github.com/askeland/mailfold/internal/pipeline"
	"github.com/askeland/mailfold/internal/store"
	"github.com/askeland/mailfold/internal/web"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "mailfold",
		Usage:   "capture inbound email as markdown digests and notes",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "base-dir",
				Usage: "data directory (config and object store)",
				Value: defaultBaseDir(),
			},
		},
		Commands: []*cli.Command{
			ingestCommand(),
			digestCommand(),
			notesCommand(),
			serveCommand(),
		},
	}
}

func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mailfold"
	}
	return filepath.Join(home, ".mailfold")
}

// openEnv loads configuration and opens the object store for a command.
func openEnv(c *cli.Context) (*store.SQLite, *config.Config, error) {
	baseDir := c.String("base-dir")

	cfg, err := config.Load(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	st.ConfigurePool(cfg)

	return st, cfg, nil
}

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "capture raw messages from .eml files, or stdin when no files given",
		ArgsUsage: "[file ...]",
		Action: func(c *cli.Context) error {
			st, cfg, err := openEnv(c)
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := pipeline.New(st, cfg)
			if err != nil {
				return err
			}

			if c.Args().Len() == 0 {
				raw, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				return ingestOne(c, p, "<stdin>", raw)
			}

			for _, path := range c.Args().Slice() {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				if err := ingestOne(c, p, path, raw); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func ingestOne(c *cli.Context, p *pipeline.Pipeline, name string, raw []byte) error {
	result, err := p.Process(c.Context, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	status := "unchanged"
	if result.Written {
		status = "written"
	}
	if result.Newsletter {
		fmt.Printf("%s: newsletter (%s) -> %s [%s]\n", name, result.Topic, result.Key, status)
	} else {
		fmt.Printf("%s: note -> %s [%s]\n", name, result.Key, status)
	}
	return nil
}

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:  "digest",
		Usage: "inspect captured daily digests",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list digest days",
				Action: func(c *cli.Context) error {
					return listKeys(c, store.DigestPrefix)
				},
			},
			{
				Name:      "show",
				Usage:     "print one day's digest (default: today)",
				ArgsUsage: "[YYYY-MM-DD]",
				Action: func(c *cli.Context) error {
					day := c.Args().First()
					if day == "" {
						day = time.Now().UTC().Format("2006-01-02")
					}
					return catKey(c, store.DigestPrefix+day+".md")
				},
			},
		},
	}
}

func notesCommand() *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "inspect captured notes",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list note keys",
				Action: func(c *cli.Context) error {
					return listKeys(c, store.NotePrefix)
				},
			},
			{
				Name:      "show",
				Usage:     "print one note",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return fmt.Errorf("note name is required")
					}
					return catKey(c, store.NotePrefix+name+".md")
				},
			},
		},
	}
}

func listKeys(c *cli.Context, prefix string) error {
	st, _, err := openEnv(c)
	if err != nil {
		return err
	}
	defer st.Close()

	keys, err := st.List(c.Context, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

func catKey(c *cli.Context, key string) error {
	st, _, err := openEnv(c)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := st.Get(c.Context, key)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// serveSpec is the environment configuration for the viewer, prefixed
// MAILFOLD_ (e.g. MAILFOLD_PORT). Flags override the environment.
type serveSpec struct {
	Bind string `default:"127.0.0.1"`
	Port int    `default:"8787"`
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the read-only digest viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "bind address"},
			&cli.IntFlag{Name: "port", Usage: "listen port"},
		},
		Action: func(c *cli.Context) error {
			var spec serveSpec
			if err := envconfig.Process("mailfold", &spec); err != nil {
				return fmt.Errorf("read environment: %w", err)
			}
			if c.IsSet("bind") {
				spec.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				spec.Port = c.Int("port")
			}

			st, _, err := openEnv(c)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := web.NewServer(st, Version, spec.Bind, spec.Port)
			log.Printf("mailfold viewer listening on http://%s", srv.Addr)
			return srv.ListenAndServe()
		},
	}
}
